// internal/schema/registry.go
package schema

// ColumnSchema is the ordered list of feature columns the trained model
// expects. The order is fixed at artifact-load time and is a cross-process
// contract with the model; it is never recomputed here.
type ColumnSchema struct {
	columns []string
	index   map[string]int
}

// NewColumnSchema builds an indexed schema from the artifact's feature order.
func NewColumnSchema(columns []string) *ColumnSchema {
	s := &ColumnSchema{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(s.columns, columns)
	for i, c := range s.columns {
		s.index[c] = i
	}
	return s
}

// Columns returns the column names in model order.
func (s *ColumnSchema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of feature columns.
func (s *ColumnSchema) Len() int {
	return len(s.columns)
}

// Index returns the slot of a column, and whether the column exists.
func (s *ColumnSchema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Has reports whether the schema contains the named column.
func (s *ColumnSchema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Engineered feature column names. These match the training pipeline and are
// only meaningful where the loaded schema actually contains them.
const (
	ColLoanAmountLog      = "loan_amnt_log"
	ColTerm               = "term_num"
	ColInterestRate       = "int_rate_num"
	ColSubGrade           = "sub_grade_map"
	ColEmploymentLength   = "emp_length_num"
	ColAnnualIncomeLog    = "annual_inc_log"
	ColDTI                = "dti"
	ColFicoRange          = "fico_range"
	ColCreditHistoryLog   = "earliest_cr_line_months_log"
	ColOpenAccounts       = "open_acc"
	ColTotalAccounts      = "total_acc"
	ColRevolvingBalLog    = "revol_bal_log"
	ColRevolvingUtil      = "revol_util_num"
	ColPublicRecords      = "pub_rec_clip"
	ColPublicBankruptcies = "pub_rec_bankruptcies_clip"
	ColMortgageAccounts   = "mort_acc"
	ColMortgageUtil       = "mort_acc_utilization"
	ColRatePerFico        = "int_rate_per_fico"
	ColFlagLowFico        = "flag_low_fico"
	ColFlagHighRate       = "flag_high_int_rate"
	ColFlagHighSubGrade   = "flag_high_sub_grade"
)

// One-hot column prefixes. The encoded column name is prefix + raw value.
const (
	PrefixPurpose            = "purpose_"
	PrefixApplicationType    = "application_type_"
	PrefixVerificationStatus = "verification_status_"
	PrefixHomeOwnership      = "home_ownership_new_"
)

// subGradeOrdinals maps the two-character risk sub-grade to its ordinal.
// A1..G5 cover 1..35; anything else is ordinal 0 by convention.
var subGradeOrdinals = map[string]int{
	"A1": 1, "A2": 2, "A3": 3, "A4": 4, "A5": 5,
	"B1": 6, "B2": 7, "B3": 8, "B4": 9, "B5": 10,
	"C1": 11, "C2": 12, "C3": 13, "C4": 14, "C5": 15,
	"D1": 16, "D2": 17, "D3": 18, "D4": 19, "D5": 20,
	"E1": 21, "E2": 22, "E3": 23, "E4": 24, "E5": 25,
	"F1": 26, "F2": 27, "F3": 28, "F4": 29, "F5": 30,
	"G1": 31, "G2": 32, "G3": 33, "G4": 34, "G5": 35,
}

// SubGradeOrdinal returns the ordinal for a sub-grade code, or 0 for any
// unknown code. Unknown codes are a sentinel, not an error.
func SubGradeOrdinal(code string) int {
	return subGradeOrdinals[code]
}

// friendlyNames maps internal feature columns to the display names used in
// explanation sentences.
var friendlyNames = map[string]string{
	ColLoanAmountLog:                       "Requested Loan Amount",
	ColTerm:                                "Loan Term Length",
	ColInterestRate:                        "Interest Rate",
	ColSubGrade:                            "Credit Grade",
	ColEmploymentLength:                    "Employment History",
	ColAnnualIncomeLog:                     "Annual Income",
	ColDTI:                                 "Debt-to-Income Ratio",
	"purpose_car":                          "Loan Purpose: Car",
	"purpose_credit_card":                  "Loan Purpose: Credit Card",
	"purpose_debt_consolidation":           "Loan Purpose: Debt Consolidation",
	"purpose_home_improvement":             "Loan Purpose: Home Improvement",
	"purpose_major_purchase":               "Loan Purpose: Major Purchase",
	"purpose_medical":                      "Loan Purpose: Medical",
	"purpose_other":                        "Loan Purpose: Other",
	"purpose_small_business":               "Loan Purpose: Small Business",
	"application_type_Joint App":           "Joint Application",
	"application_type_Individual":          "Individual Application",
	ColFicoRange:                           "FICO Credit Score",
	ColCreditHistoryLog:                    "Length of Credit History",
	ColOpenAccounts:                        "Open Credit Lines",
	ColTotalAccounts:                       "Total Credit Accounts",
	ColRevolvingBalLog:                     "Total Revolving Balance",
	ColRevolvingUtil:                       "Credit Line Utilization",
	ColPublicRecords:                       "Public Derogatory Records",
	ColPublicBankruptcies:                  "Bankruptcy History",
	ColMortgageAccounts:                    "Number of Mortgage Accounts",
	"home_ownership_new_RENT":              "Housing Status (Renting)",
	"home_ownership_new_OWN":               "Housing Status (Owning)",
	"home_ownership_new_MORTGAGE":          "Housing Status (Mortgage)",
	"home_ownership_new_OTHER":             "Housing Status (Other)",
	"verification_status_Verified":         "Income Verified",
	"verification_status_Source Verified":  "Income Source Verification",
	"verification_status_Not Verified":     "Income Source not Verification",
	ColMortgageUtil:                        "Mortgage Account Density",
	ColRatePerFico:                         "Interest Rate to Score Ratio",
	ColFlagLowFico:                         "Low Credit Score Warning",
	ColFlagHighRate:                        "High Interest Rate Warning",
	ColFlagHighSubGrade:                    "Risk Grade Warning",
}

// FriendlyName returns the display name for a column, falling back to the
// raw column name when none is registered.
func FriendlyName(column string) string {
	if name, ok := friendlyNames[column]; ok {
		return name
	}
	return column
}

// FriendlyNames returns a copy of the display-name table.
func FriendlyNames() map[string]string {
	out := make(map[string]string, len(friendlyNames))
	for k, v := range friendlyNames {
		out[k] = v
	}
	return out
}
