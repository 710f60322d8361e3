package core

import "github.com/shopspring/decimal"

// Agent is the travel-agency account signed in to the portal.
type Agent struct {
	ID         int    `json:"id"`
	Company    string `json:"company"`
	CustomerID int    `json:"customer_id"`
	Email      string `json:"email"`
}

// Residence is one residence-visa processing case as listed on the dashboard.
// CompletedStep is 0–10; the server owns it and only ever moves it forward.
type Residence struct {
	ResidenceID     int             `json:"residenceID"`
	PassengerName   string          `json:"passenger_name"`
	PassportNumber  string          `json:"passportNumber"`
	NationalityName string          `json:"nationality_name"`
	CountryCode     string          `json:"countryCode"`
	CompanyName     string          `json:"company_name"`
	CompanyNumber   string          `json:"company_number"`
	MBNumber        string          `json:"mb_number"`
	UID             string          `json:"uid"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	CompletedStep   int             `json:"completedStep"`
	StatusName      string          `json:"status_name"`
	Datetime        string          `json:"datetime"`
	Cancelled       int             `json:"cancelled"`
	Hold            int             `json:"hold"`
}

// Balance is the amount still owed on the case.
func (r Residence) Balance() decimal.Decimal {
	return r.SalePrice.Sub(r.TotalPaid)
}

// IsCompleted reports whether the case has reached the final step.
func (r Residence) IsCompleted() bool {
	return r.CompletedStep == FinalStep
}

// ResidenceDetail is the full record behind the residence detail view.
type ResidenceDetail struct {
	Residence

	PositionName     string          `json:"position_name"`
	TotalFine        decimal.Decimal `json:"total_fine"`
	Remarks          string          `json:"remarks"`
	EmiratesIDNumber string          `json:"EmiratesIDNumber"`
	LabourCardNumber string          `json:"LabourCardNumber"`
	OfferLetterDate  string          `json:"offerLetterDate"`
	InsuranceDate    string          `json:"insuranceDate"`
	LaborCardDate    string          `json:"laborCardDate"`
	EVisaDate        string          `json:"eVisaDate"`
	ChangeStatusDate string          `json:"changeStatusDate"`
	MedicalDate      string          `json:"medicalDate"`
	EmiratesIDDate   string          `json:"emiratesIDDate"`
	VisaStampingDate string          `json:"visaStampingDate"`
}

// Currency is a ledger currency offered by the server.
type Currency struct {
	ID   int    `json:"currencyID"`
	Name string `json:"currencyName"`
}

// LedgerRecord is the per-residence charge and payment breakdown in one currency.
type LedgerRecord struct {
	ResidenceID   int    `json:"residenceID"`
	MainPassenger string `json:"main_passenger"`
	Nationality   string `json:"nationality"`
	CompanyName   string `json:"company_name"`
	Date          string `json:"dt"`
	CurrentStatus string `json:"current_status"`

	SalePrice           decimal.Decimal `json:"sale_price"`
	Fine                decimal.Decimal `json:"fine"`
	CancellationCharges decimal.Decimal `json:"cancellation_charges"`
	TawjeehCharges      decimal.Decimal `json:"tawjeeh_charges"`
	ILOECharges         decimal.Decimal `json:"iloe_charges"`
	CustomCharges       decimal.Decimal `json:"custom_charges"`

	ResidencePayment decimal.Decimal `json:"residencePayment"`
	FinePayment      decimal.Decimal `json:"finePayment"`
	TawjeehPayments  decimal.Decimal `json:"tawjeeh_payments"`
	ILOEPayments     decimal.Decimal `json:"iloe_payments"`
}

// LedgerTotals are the summary figures for one currency.
type LedgerTotals struct {
	TotalCharges       decimal.Decimal `json:"totalCharges"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
}

// Pagination is the paging block some list endpoints return alongside data.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
