package cohort

import "fmt"

// Column names expected in the cohort CSV header.
const (
	ColumnStudentID     = "student_id"
	ColumnWonLottery    = "won_lottery"
	ColumnSex           = "sex"
	ColumnAge           = "age"
	ColumnFinishedGrade = "finished_grade"
	ColumnUsedAid       = "used_fin_aid"
)

// Columns lists the cohort columns in schema order. Descriptive output and
// model matrices follow this order.
var Columns = []string{
	ColumnStudentID,
	ColumnWonLottery,
	ColumnSex,
	ColumnAge,
	ColumnFinishedGrade,
	ColumnUsedAid,
}

// Constants for cohort validation
const (
	// MinAge and MaxAge bound plausible student ages in the lottery cohort
	MinAge = 5
	MaxAge = 25

	// MinStudentsForAnalysis is the smallest cohort the estimators accept
	MinStudentsForAnalysis = 30
)

// Student represents a single row of the voucher lottery cohort
type Student struct {
	ID            int64 `json:"student_id"`
	WonLottery    int   `json:"won_lottery"`    // 1 = won a voucher in the lottery (instrument)
	Sex           int   `json:"sex"`            // 1 = male
	Age           int   `json:"age"`            // age in years at the lottery
	FinishedGrade int   `json:"finished_grade"` // 1 = finished 8th grade (outcome)
	UsedAid       int   `json:"used_fin_aid"`   // 1 = used financial aid (treatment)
}

// Won reports whether the student won a voucher in the lottery
func (s Student) Won() bool {
	return s.WonLottery == 1
}

// Treated reports whether the student actually used financial aid
func (s Student) Treated() bool {
	return s.UsedAid == 1
}

// Finished reports whether the student finished 8th grade
func (s Student) Finished() bool {
	return s.FinishedGrade == 1
}

// Validate checks that every field is inside its domain. Binary fields must
// be exactly 0 or 1; ages outside [MinAge, MaxAge] indicate a corrupt row.
func (s Student) Validate() error {
	if s.ID <= 0 {
		return ValidationError{
			Field:   ColumnStudentID,
			Message: fmt.Sprintf("student id must be positive, got %d", s.ID),
			Value:   s.ID,
		}
	}
	if s.WonLottery != 0 && s.WonLottery != 1 {
		return ValidationError{
			Field:   ColumnWonLottery,
			Message: fmt.Sprintf("lottery indicator must be 0 or 1, got %d", s.WonLottery),
			Value:   s.WonLottery,
		}
	}
	if s.Sex != 0 && s.Sex != 1 {
		return ValidationError{
			Field:   ColumnSex,
			Message: fmt.Sprintf("sex indicator must be 0 or 1, got %d", s.Sex),
			Value:   s.Sex,
		}
	}
	if s.Age < MinAge || s.Age > MaxAge {
		return ValidationError{
			Field:   ColumnAge,
			Message: fmt.Sprintf("age must be between %d and %d, got %d", MinAge, MaxAge, s.Age),
			Value:   s.Age,
		}
	}
	if s.FinishedGrade != 0 && s.FinishedGrade != 1 {
		return ValidationError{
			Field:   ColumnFinishedGrade,
			Message: fmt.Sprintf("outcome indicator must be 0 or 1, got %d", s.FinishedGrade),
			Value:   s.FinishedGrade,
		}
	}
	if s.UsedAid != 0 && s.UsedAid != 1 {
		return ValidationError{
			Field:   ColumnUsedAid,
			Message: fmt.Sprintf("aid indicator must be 0 or 1, got %d", s.UsedAid),
			Value:   s.UsedAid,
		}
	}
	return nil
}

// Value returns the named column of the student as a float64, ready for a
// model matrix. Unknown names return an error rather than a zero so schema
// drift fails loudly.
func (s Student) Value(column string) (float64, error) {
	switch column {
	case ColumnStudentID:
		return float64(s.ID), nil
	case ColumnWonLottery:
		return float64(s.WonLottery), nil
	case ColumnSex:
		return float64(s.Sex), nil
	case ColumnAge:
		return float64(s.Age), nil
	case ColumnFinishedGrade:
		return float64(s.FinishedGrade), nil
	case ColumnUsedAid:
		return float64(s.UsedAid), nil
	default:
		return 0, fmt.Errorf("unknown cohort column: %s", column)
	}
}

// Column extracts one named column across the cohort as float64 values
func Column(students []Student, column string) ([]float64, error) {
	out := make([]float64, len(students))
	for i, s := range students {
		v, err := s.Value(column)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Partition splits the cohort by a predicate. The first slice holds students
// for which pred is false, the second those for which it is true. Order is
// preserved within each group.
func Partition(students []Student, pred func(Student) bool) (out, in []Student) {
	for _, s := range students {
		if pred(s) {
			in = append(in, s)
		} else {
			out = append(out, s)
		}
	}
	return out, in
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	return ve.Message
}
