package enums

import "slices"

// PaymentMethod is how the vendor intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCredit         PaymentMethod = "CREDIT"
	PaymentMethodDigitalWallet  PaymentMethod = "DIGITAL_WALLET"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery, PaymentMethodBankTransfer, PaymentMethodCredit, PaymentMethodDigitalWallet,
}

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return slices.Contains(validPaymentMethods, p) }

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse("payment method", value, validPaymentMethods)
}
