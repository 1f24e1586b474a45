// Package report renders and persists voucher study results.
//
// The same StudyResult feeds four writers:
//
// Render: a plain text research memo with fixed-order sections and
// fixed-width numbers, written to any io.Writer. Output is byte for byte
// stable for a given result, which is what the golden tests pin down.
//
// SaveCSV: effects.csv (one row per headline estimate) and coefficients.csv
// (one row per fitted model term), for downstream analysis.
//
// SaveJSON: the complete result with an export metadata envelope, pretty
// printed.
//
// SaveWorkbook: an xlsx workbook with Summary, Descriptives and Models
// sheets for spreadsheet users.
//
// Example usage:
//
//	// Print the memo to stdout
//	err := report.Render(os.Stdout, result)
//
//	// Persist the machine readable tables next to each other
//	err = report.SaveCSV("out", result)
//	err = report.SaveJSON("out/study.json", result)
//	err = report.SaveWorkbook("out/study.xlsx", result)
package report
