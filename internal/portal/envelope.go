package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"agent-portal/internal/core"

	"github.com/shopspring/decimal"
)

// The API wraps every response in {success, message, ...} but is not
// consistent about where the payload goes: sometimes merged into the top
// level, sometimes under "data", sometimes under "data.data". Everything that
// knows about those shapes lives in this file.

// envelope is a decoded response body with its top-level keys kept raw.
type envelope struct {
	body   []byte
	fields map[string]json.RawMessage
}

func parseEnvelope(body []byte) (*envelope, error) {
	env := &envelope{body: body, fields: map[string]json.RawMessage{}}
	if err := json.Unmarshal(body, &env.fields); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	return env, nil
}

func (e *envelope) success() bool {
	raw, ok := e.fields["success"]
	if !ok {
		return false
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	var s flexString
	if json.Unmarshal(raw, &s) == nil {
		switch strings.ToLower(string(s)) {
		case "true", "1":
			return true
		}
	}
	return false
}

func (e *envelope) str(key string) string {
	raw, ok := e.fields[key]
	if !ok {
		return ""
	}
	var s flexString
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return string(s)
}

// message returns the best human-readable explanation the server gave.
func (e *envelope) message() string {
	if m := e.str("message"); m != "" {
		return m
	}
	return e.str("error")
}

func (e *envelope) data() json.RawMessage {
	return e.fields["data"]
}

// nested returns key from the top level, falling back to data.key when the
// top-level value is missing or falsy.
func (e *envelope) nested(key string) json.RawMessage {
	if raw := e.fields[key]; !isFalsy(raw) {
		return raw
	}
	var inner map[string]json.RawMessage
	if isObject(e.data()) && json.Unmarshal(e.data(), &inner) == nil {
		if raw := inner[key]; !isFalsy(raw) {
			return raw
		}
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

// isFalsy reports whether raw is missing, null, false, "" or a zero number.
func isFalsy(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	switch string(t) {
	case "", "null", "false", `""`:
		return true
	}
	var n float64
	if json.Unmarshal(t, &n) == nil {
		return n == 0
	}
	return false
}

// ── Lenient scalars ───────────────────────────────────────────────────────────

// flexDecimal accepts numbers, numeric strings, "" and null. Anything that is
// not a number decodes as zero.
type flexDecimal decimal.Decimal

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := decimal.NewFromString(s)
	if err != nil {
		v = decimal.Zero
	}
	*f = flexDecimal(v)
	return nil
}

func (f flexDecimal) dec() decimal.Decimal { return decimal.Decimal(f) }

// flexInt accepts numbers and numeric strings; anything else decodes as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if v, err := decimal.NewFromString(s); err == nil {
		*f = flexInt(v.IntPart())
		return nil
	}
	*f = 0
	return nil
}

// flexString accepts strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	switch {
	case string(t) == "null":
		*f = ""
	case len(t) > 0 && t[0] == '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(t)
	}
	return nil
}

// ── Wire shapes ───────────────────────────────────────────────────────────────

type agentWire struct {
	ID         flexInt    `json:"id"`
	Company    flexString `json:"company"`
	CustomerID flexInt    `json:"customer_id"`
	Email      flexString `json:"email"`
}

func (w agentWire) toCore() *core.Agent {
	return &core.Agent{
		ID:         int(w.ID),
		Company:    string(w.Company),
		CustomerID: int(w.CustomerID),
		Email:      string(w.Email),
	}
}

type residenceWire struct {
	ResidenceID     flexInt     `json:"residenceID"`
	PassengerName   flexString  `json:"passenger_name"`
	PassportNumber  flexString  `json:"passportNumber"`
	NationalityName flexString  `json:"nationality_name"`
	CountryCode     flexString  `json:"countryCode"`
	CompanyName     flexString  `json:"company_name"`
	CompanyNumber   flexString  `json:"company_number"`
	MBNumber        flexString  `json:"mb_number"`
	UID             flexString  `json:"uid"`
	SalePrice       flexDecimal `json:"sale_price"`
	TotalPaid       flexDecimal `json:"total_paid"`
	CompletedStep   flexInt     `json:"completedStep"`
	StatusName      flexString  `json:"status_name"`
	Datetime        flexString  `json:"datetime"`
	Cancelled       flexInt     `json:"cancelled"`
	Hold            flexInt     `json:"hold"`
}

func (w residenceWire) toCore() core.Residence {
	return core.Residence{
		ResidenceID:     int(w.ResidenceID),
		PassengerName:   string(w.PassengerName),
		PassportNumber:  string(w.PassportNumber),
		NationalityName: string(w.NationalityName),
		CountryCode:     string(w.CountryCode),
		CompanyName:     string(w.CompanyName),
		CompanyNumber:   string(w.CompanyNumber),
		MBNumber:        string(w.MBNumber),
		UID:             string(w.UID),
		SalePrice:       w.SalePrice.dec(),
		TotalPaid:       w.TotalPaid.dec(),
		CompletedStep:   int(w.CompletedStep),
		StatusName:      string(w.StatusName),
		Datetime:        string(w.Datetime),
		Cancelled:       int(w.Cancelled),
		Hold:            int(w.Hold),
	}
}

type residenceDetailWire struct {
	residenceWire
	PositionName     flexString  `json:"position_name"`
	TotalFine        flexDecimal `json:"total_fine"`
	Remarks          flexString  `json:"remarks"`
	EmiratesIDNumber flexString  `json:"EmiratesIDNumber"`
	LabourCardNumber flexString  `json:"LabourCardNumber"`
	OfferLetterDate  flexString  `json:"offerLetterDate"`
	InsuranceDate    flexString  `json:"insuranceDate"`
	LaborCardDate    flexString  `json:"laborCardDate"`
	EVisaDate        flexString  `json:"eVisaDate"`
	ChangeStatusDate flexString  `json:"changeStatusDate"`
	MedicalDate      flexString  `json:"medicalDate"`
	EmiratesIDDate   flexString  `json:"emiratesIDDate"`
	VisaStampingDate flexString  `json:"visaStampingDate"`
}

func (w residenceDetailWire) toCore() *core.ResidenceDetail {
	return &core.ResidenceDetail{
		Residence:        w.residenceWire.toCore(),
		PositionName:     string(w.PositionName),
		TotalFine:        w.TotalFine.dec(),
		Remarks:          string(w.Remarks),
		EmiratesIDNumber: string(w.EmiratesIDNumber),
		LabourCardNumber: string(w.LabourCardNumber),
		OfferLetterDate:  string(w.OfferLetterDate),
		InsuranceDate:    string(w.InsuranceDate),
		LaborCardDate:    string(w.LaborCardDate),
		EVisaDate:        string(w.EVisaDate),
		ChangeStatusDate: string(w.ChangeStatusDate),
		MedicalDate:      string(w.MedicalDate),
		EmiratesIDDate:   string(w.EmiratesIDDate),
		VisaStampingDate: string(w.VisaStampingDate),
	}
}

type ledgerRecordWire struct {
	ResidenceID         flexInt     `json:"residenceID"`
	MainPassenger       flexString  `json:"main_passenger"`
	Nationality         flexString  `json:"nationality"`
	CompanyName         flexString  `json:"company_name"`
	Date                flexString  `json:"dt"`
	CurrentStatus       flexString  `json:"current_status"`
	SalePrice           flexDecimal `json:"sale_price"`
	Fine                flexDecimal `json:"fine"`
	CancellationCharges flexDecimal `json:"cancellation_charges"`
	TawjeehCharges      flexDecimal `json:"tawjeeh_charges"`
	ILOECharges         flexDecimal `json:"iloe_charges"`
	CustomCharges       flexDecimal `json:"custom_charges"`
	ResidencePayment    flexDecimal `json:"residencePayment"`
	FinePayment         flexDecimal `json:"finePayment"`
	TawjeehPayments     flexDecimal `json:"tawjeeh_payments"`
	ILOEPayments        flexDecimal `json:"iloe_payments"`
}

func (w ledgerRecordWire) toCore() core.LedgerRecord {
	return core.LedgerRecord{
		ResidenceID:         int(w.ResidenceID),
		MainPassenger:       string(w.MainPassenger),
		Nationality:         string(w.Nationality),
		CompanyName:         string(w.CompanyName),
		Date:                string(w.Date),
		CurrentStatus:       string(w.CurrentStatus),
		SalePrice:           w.SalePrice.dec(),
		Fine:                w.Fine.dec(),
		CancellationCharges: w.CancellationCharges.dec(),
		TawjeehCharges:      w.TawjeehCharges.dec(),
		ILOECharges:         w.ILOECharges.dec(),
		CustomCharges:       w.CustomCharges.dec(),
		ResidencePayment:    w.ResidencePayment.dec(),
		FinePayment:         w.FinePayment.dec(),
		TawjeehPayments:     w.TawjeehPayments.dec(),
		ILOEPayments:        w.ILOEPayments.dec(),
	}
}

type currencyWire struct {
	ID   flexInt    `json:"currencyID"`
	Name flexString `json:"currencyName"`
}

type totalsWire struct {
	TotalCharges       flexDecimal `json:"totalCharges"`
	TotalPaid          flexDecimal `json:"totalPaid"`
	OutstandingBalance flexDecimal `json:"outstandingBalance"`
}

type paginationWire struct {
	Page  flexInt `json:"page"`
	Limit flexInt `json:"limit"`
	Total flexInt `json:"total"`
	Pages flexInt `json:"pages"`
}

// ── Normalizers ───────────────────────────────────────────────────────────────

// loginPayload extracts the token and profile from a login response. The token
// is at the top level or under data; the profile is under agent, data.agent,
// or merged into the top level.
func loginPayload(e *envelope) (string, *core.Agent, error) {
	var token flexString
	if raw := e.nested("token"); raw != nil {
		if err := json.Unmarshal(raw, &token); err != nil {
			return "", nil, fmt.Errorf("decode token: %w", err)
		}
	}

	var agent *core.Agent
	raw := e.nested("agent")
	switch {
	case isObject(raw):
		var w agentWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return "", nil, fmt.Errorf("decode agent: %w", err)
		}
		agent = w.toCore()
	case raw == nil && !isFalsy(e.fields["id"]):
		var w agentWire
		if err := json.Unmarshal(e.body, &w); err != nil {
			return "", nil, fmt.Errorf("decode agent: %w", err)
		}
		agent = w.toCore()
	}
	return string(token), agent, nil
}

// profilePayload extracts the agent profile from a me response, field by
// field: top level first, then data.
func profilePayload(e *envelope) (*core.Agent, error) {
	var top, inner agentWire
	if err := json.Unmarshal(e.body, &top); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if isObject(e.data()) {
		if err := json.Unmarshal(e.data(), &inner); err != nil {
			return nil, fmt.Errorf("decode profile data: %w", err)
		}
	}
	a := top.toCore()
	b := inner.toCore()
	if a.ID == 0 {
		a.ID = b.ID
	}
	if a.Company == "" {
		a.Company = b.Company
	}
	if a.CustomerID == 0 {
		a.CustomerID = b.CustomerID
	}
	if a.Email == "" {
		a.Email = b.Email
	}
	return a, nil
}

// residencesPayload extracts the list from data.data, or data, or nothing.
func residencesPayload(e *envelope) ([]core.Residence, core.Pagination, error) {
	var page core.Pagination
	list := json.RawMessage(nil)
	if isObject(e.data()) {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(e.data(), &inner); err != nil {
			return nil, page, fmt.Errorf("decode residences data: %w", err)
		}
		if isArray(inner["data"]) {
			list = inner["data"]
		}
		var p paginationWire
		_ = json.Unmarshal(e.data(), &p)
		page = core.Pagination{Page: int(p.Page), Limit: int(p.Limit), Total: int(p.Total), Pages: int(p.Pages)}
	} else if isArray(e.data()) {
		list = e.data()
	}

	residences := []core.Residence{}
	if list == nil {
		return residences, page, nil
	}
	var wires []residenceWire
	if err := json.Unmarshal(list, &wires); err != nil {
		return nil, page, fmt.Errorf("decode residences: %w", err)
	}
	for _, w := range wires {
		residences = append(residences, w.toCore())
	}
	return residences, page, nil
}

// residenceDetailPayload reads the residence from data, or from the root.
func residenceDetailPayload(e *envelope) (*core.ResidenceDetail, error) {
	src := json.RawMessage(e.body)
	if isObject(e.data()) {
		src = e.data()
	}
	var w residenceDetailWire
	if err := json.Unmarshal(src, &w); err != nil {
		return nil, fmt.Errorf("decode residence: %w", err)
	}
	return w.toCore(), nil
}

// currenciesPayload reads currencies merged into the top level under numeric
// keys ({"0": {...}, "1": {...}, "success": true}), falling back to data.data
// and then data.
func currenciesPayload(e *envelope) ([]core.Currency, error) {
	var keys []int
	for k := range e.fields {
		if n, err := strconv.Atoi(k); err == nil {
			keys = append(keys, n)
		}
	}
	sort.Ints(keys)

	var wires []currencyWire
	for _, k := range keys {
		var w currencyWire
		if err := json.Unmarshal(e.fields[strconv.Itoa(k)], &w); err != nil {
			return nil, fmt.Errorf("decode currency %d: %w", k, err)
		}
		wires = append(wires, w)
	}

	if len(wires) == 0 {
		list := json.RawMessage(nil)
		if isObject(e.data()) {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(e.data(), &inner); err == nil && isArray(inner["data"]) {
				list = inner["data"]
			}
		} else if isArray(e.data()) {
			list = e.data()
		}
		if list != nil {
			if err := json.Unmarshal(list, &wires); err != nil {
				return nil, fmt.Errorf("decode currencies: %w", err)
			}
		}
	}

	out := make([]core.Currency, 0, len(wires))
	for _, w := range wires {
		out = append(out, core.Currency{ID: int(w.ID), Name: string(w.Name)})
	}
	return out, nil
}

// ledgerPayload reads data, totals, currency and pagination, all top level.
// Missing totals read as zero.
func ledgerPayload(e *envelope) (*LedgerPage, error) {
	page := &LedgerPage{
		Records: []core.LedgerRecord{},
		Totals: core.LedgerTotals{
			TotalCharges:       decimal.Zero,
			TotalPaid:          decimal.Zero,
			OutstandingBalance: decimal.Zero,
		},
		Currency: e.str("currency"),
	}

	if isArray(e.data()) {
		var wires []ledgerRecordWire
		if err := json.Unmarshal(e.data(), &wires); err != nil {
			return nil, fmt.Errorf("decode ledger records: %w", err)
		}
		for _, w := range wires {
			page.Records = append(page.Records, w.toCore())
		}
	}

	if raw := e.fields["totals"]; isObject(raw) {
		var t totalsWire
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode ledger totals: %w", err)
		}
		page.Totals = core.LedgerTotals{
			TotalCharges:       t.TotalCharges.dec(),
			TotalPaid:          t.TotalPaid.dec(),
			OutstandingBalance: t.OutstandingBalance.dec(),
		}
	}

	if raw := e.fields["pagination"]; isObject(raw) {
		var p paginationWire
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode ledger pagination: %w", err)
		}
		page.Pagination = &core.Pagination{Page: int(p.Page), Limit: int(p.Limit), Total: int(p.Total), Pages: int(p.Pages)}
	}
	return page, nil
}
