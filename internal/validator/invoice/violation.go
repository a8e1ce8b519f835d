package invoice

// Severity classifies how a violation affects invoice validity. Only
// error-severity violations make an invoice invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Category groups rules by the kind of defect they detect.
type Category string

const (
	CategoryCompleteness Category = "completeness"
	CategoryFormat       Category = "format"
	CategoryBusiness     Category = "business"
	CategoryAnomaly      Category = "anomaly"
)

// Violation is a single failed check against one invoice. Field is nil when
// the finding cannot be attributed to a single field. Defined here rather
// than in the validator package so rule implementations avoid an import
// cycle.
type Violation struct {
	RuleID   string   `json:"rule_id"`
	Category Category `json:"category"`
	Field    *string  `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// FieldRef turns a field path literal into the *string a Violation carries.
func FieldRef(path string) *string {
	return &path
}
