package report

import (
	"fmt"

	"github.com/VectorBits/Solview/src/internal/logger"
)

type Reporter struct {
	generator Generator
	storage   Storage
}

func NewReporter(generator Generator, storage Storage) *Reporter {
	return &Reporter{
		generator: generator,
		storage:   storage,
	}
}

// ForKind returns a reporter writing kind reports into outputDir.
func ForKind(kind, outputDir string) (*Reporter, error) {
	var g Generator
	switch kind {
	case KindABI:
		g = NewABIGenerator()
	case KindDocs:
		g = NewMarkdownGenerator()
	case KindModel:
		g = NewModelGenerator()
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
	return NewReporter(g, NewFileStorage(outputDir)), nil
}

// Generate renders report without saving it.
func (r *Reporter) Generate(report *Report) (string, error) {
	content, err := r.generator.Generate(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}
	return content, nil
}

func (r *Reporter) GenerateAndSave(report *Report) (string, error) {
	// 生成报告内容
	content, err := r.generator.Generate(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	// 保存报告
	path, err := r.storage.Save(report, r.generator.Extension(), content)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info("%s report for %s written to %s", report.Kind, report.Name, path)

	return path, nil
}
