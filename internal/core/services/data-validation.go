package services

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/dataset"
)

// ValidationReport is written next to the validation artifact.
type ValidationReport struct {
	ValidationStatus bool                  `yaml:"validation_status"`
	Files            []FileValidationCheck `yaml:"files"`
}

// FileValidationCheck holds the findings for one split file.
type FileValidationCheck struct {
	Path           string   `yaml:"path"`
	Rows           int      `yaml:"rows"`
	MissingColumns []string `yaml:"missing_columns,omitempty"`
	ExtraColumns   []string `yaml:"extra_columns,omitempty"`
	NonNumeric     []string `yaml:"non_numeric_columns,omitempty"`
}

func (c FileValidationCheck) ok() bool {
	return len(c.MissingColumns) == 0 && len(c.NonNumeric) == 0
}

// DataValidation checks the ingested splits against the schema.
type DataValidation struct {
	cfg       config.DataValidationConfig
	ingestion domain.DataIngestionArtifacts
}

func NewDataValidation(cfg config.DataValidationConfig, ingestion domain.DataIngestionArtifacts) *DataValidation {
	return &DataValidation{cfg: cfg, ingestion: ingestion}
}

func (s *DataValidation) fail(op string, err error) error {
	return domain.NewPipelineError(domain.StageValidation, op, err)
}

// ValidateFile checks one CSV split.
func (s *DataValidation) ValidateFile(path string) (FileValidationCheck, error) {
	check := FileValidationCheck{Path: path}

	frame, err := dataset.ReadCSVFile(path)
	if err != nil {
		return check, err
	}
	check.Rows = frame.Len()

	required := map[string]bool{}
	for _, col := range s.cfg.Schema.RequiredColumns() {
		required[col] = true
		if !frame.HasColumn(col) {
			check.MissingColumns = append(check.MissingColumns, col)
		}
	}
	for _, col := range frame.Columns {
		if !required[col] {
			check.ExtraColumns = append(check.ExtraColumns, col)
		}
	}

	numeric := append(append([]string(nil), s.cfg.Schema.NumericalColumns...), s.cfg.Schema.TargetColumn)
	for _, col := range numeric {
		if !frame.HasColumn(col) {
			continue
		}
		if !isNumericColumn(frame, col) {
			check.NonNumeric = append(check.NonNumeric, col)
		}
	}

	return check, nil
}

func isNumericColumn(f *dataset.Frame, col string) bool {
	cells, err := f.Column(col)
	if err != nil {
		return false
	}
	for _, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// InitiateDataValidation validates both splits and writes the report.
func (s *DataValidation) InitiateDataValidation() (*domain.DataValidationArtifacts, error) {
	logger := log.WithField("stage", domain.StageValidation)
	logger.Info("entered data validation")

	report := ValidationReport{ValidationStatus: true}
	var problems []string
	for _, path := range []string{s.ingestion.TrainFilePath, s.ingestion.TestFilePath} {
		check, err := s.ValidateFile(path)
		if err != nil {
			return nil, s.fail("read split", err)
		}
		if len(check.ExtraColumns) > 0 {
			logger.WithFields(log.Fields{
				"file":    filepath.Base(path),
				"columns": check.ExtraColumns,
			}).Warn("split has columns not listed in the schema")
		}
		if !check.ok() {
			report.ValidationStatus = false
			problems = append(problems, describeCheck(check))
		}
		report.Files = append(report.Files, check)
	}

	if err := writeYAML(s.cfg.ReportFilePath, report); err != nil {
		return nil, s.fail("write report", err)
	}

	message := "train and test splits match the schema"
	if !report.ValidationStatus {
		message = strings.Join(problems, "; ")
		logger.WithField("report", s.cfg.ReportFilePath).Error(message)
		return nil, s.fail("validate splits", fmt.Errorf("%w: %s", domain.ErrValidationFailed, message))
	}

	logger.Info("exited data validation")
	return &domain.DataValidationArtifacts{
		ValidationStatus: report.ValidationStatus,
		Message:          message,
		ReportFilePath:   s.cfg.ReportFilePath,
	}, nil
}

func describeCheck(c FileValidationCheck) string {
	var parts []string
	if len(c.MissingColumns) > 0 {
		parts = append(parts, "missing columns "+strings.Join(c.MissingColumns, ", "))
	}
	if len(c.NonNumeric) > 0 {
		parts = append(parts, "non-numeric columns "+strings.Join(c.NonNumeric, ", "))
	}
	return fmt.Sprintf("%s: %s", filepath.Base(c.Path), strings.Join(parts, " and "))
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
