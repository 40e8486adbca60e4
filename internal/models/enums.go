package models

// Category classifies an account.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryBusiness Category = "business"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryPersonal || c == CategoryBusiness
}

// Currency is the ISO code an account is denominated in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyINR Currency = "INR"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyINR:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an account. Accounts are never
// removed, only deactivated.
type AccountStatus string

const (
	StatusActive      AccountStatus = "active"
	StatusDeactivated AccountStatus = "deactivated"
)

// Direction is the side of a ledger entry; it carries the sign of the amount.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

func (d Direction) Valid() bool {
	return d == Credit || d == Debit
}
