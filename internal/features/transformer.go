// internal/features/transformer.go
package features

import (
	"fmt"
	"math"
	"time"

	"loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/schema"
)

// Transform engineers the model's feature row from a raw application. The
// output is deterministic for a fixed input and clock month, and every raw
// field feeds at least one column. Guards reject values the log and ratio
// transforms cannot take.
func Transform(raw *models.RawApplication, cols *schema.ColumnSchema) (*Vector, error) {
	if raw.LoanAmount <= 0 {
		return nil, errors.NewPreprocessingError("loan_amnt", "must be positive for log transform")
	}
	if raw.AnnualIncome <= 0 {
		return nil, errors.NewPreprocessingError("annual_inc", "must be positive for log transform")
	}
	if raw.RevolvingBalance < 0 {
		return nil, errors.NewPreprocessingError("revol_bal", "must be non-negative")
	}
	if raw.FicoRange == 0 {
		return nil, errors.NewPreprocessingError("fico_range", "must be non-zero for rate ratio")
	}

	earliest, err := raw.EarliestCreditDate()
	if err != nil {
		return nil, errors.NewPreprocessingError("earliest_cr_line", fmt.Sprintf("invalid date: %v", err))
	}

	vec := NewVector(cols)

	// Log transforms
	vec.Set(schema.ColLoanAmountLog, math.Log(raw.LoanAmount))
	vec.Set(schema.ColAnnualIncomeLog, math.Log(raw.AnnualIncome))
	vec.Set(schema.ColRevolvingBalLog, math.Log1p(raw.RevolvingBalance))

	// Direct numeric fields
	vec.Set(schema.ColTerm, float64(raw.Term))
	vec.Set(schema.ColInterestRate, raw.InterestRate)
	vec.Set(schema.ColRevolvingUtil, raw.RevolvingUtil)
	vec.Set(schema.ColEmploymentLength, raw.EmploymentLength)
	vec.Set(schema.ColDTI, raw.DTI)
	vec.Set(schema.ColFicoRange, raw.FicoRange)
	vec.Set(schema.ColOpenAccounts, raw.OpenAccounts)
	vec.Set(schema.ColTotalAccounts, raw.TotalAccounts)
	vec.Set(schema.ColPublicRecords, raw.PublicRecords)
	vec.Set(schema.ColPublicBankruptcies, raw.PublicBankruptcies)
	vec.Set(schema.ColMortgageAccounts, raw.MortgageAccounts)

	// Sub-grade ordinal
	subGrade := schema.SubGradeOrdinal(raw.SubGrade)
	vec.Set(schema.ColSubGrade, float64(subGrade))

	// Credit history age in whole months, anchored to the first of the
	// month on both sides, floored at one month before the log.
	months := creditHistoryMonths(earliest, time.Now())
	vec.Set(schema.ColCreditHistoryLog, math.Log(math.Max(float64(months), 1)))

	// Derived ratios
	vec.Set(schema.ColRatePerFico, raw.InterestRate/raw.FicoRange)
	vec.Set(schema.ColMortgageUtil, raw.MortgageAccounts/(raw.TotalAccounts+1))

	// Risk flags
	vec.Set(schema.ColFlagLowFico, boolToFloat(raw.FicoRange < 660))
	vec.Set(schema.ColFlagHighRate, boolToFloat(raw.InterestRate > 20))
	vec.Set(schema.ColFlagHighSubGrade, boolToFloat(subGrade > 25))

	// One-hot categoricals. Values outside the trained vocabulary leave
	// every column of the group at zero.
	vec.Set(schema.PrefixPurpose+raw.Purpose, 1)
	vec.Set(schema.PrefixApplicationType+raw.ApplicationType, 1)
	vec.Set(schema.PrefixVerificationStatus+raw.VerificationStatus, 1)

	home := raw.HomeOwnership
	if home == "ANY" || home == "NONE" {
		home = "OTHER"
	}
	vec.Set(schema.PrefixHomeOwnership+home, 1)

	return vec, nil
}

// creditHistoryMonths counts calendar months between the earliest credit
// line and now, ignoring the day of month.
func creditHistoryMonths(earliest, now time.Time) int {
	return (now.Year()-earliest.Year())*12 + int(now.Month()) - int(earliest.Month())
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
