package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/shoecart/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// ValidateFile - валидирует файл снапшотов как JSON (один снапшот) или JSONL (по снапшоту на строку)
// и пишет канонический вывод валидных записей в writer.
func ValidateFile(ctx context.Context, validator ports.SnapshotValidator, filePath string, format InputFormat, ow io.Writer) (string, error) {
	resSummary := ""

	// auto по расширению; по умолчанию JSON
	if format == FormatAuto {
		format = FormatJSON
		if strings.EqualFold(filepath.Ext(filePath), ".jsonl") {
			format = FormatJSONL
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return resSummary, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		raw, err := io.ReadAll(file)
		if err != nil {
			return resSummary, fmt.Errorf("read file: %w", err)
		}
		cart, err := DecodeSnapshot(ctx, validator, raw)
		if err != nil {
			return "0 valid / 1 invalid", err
		}
		canonical, err := EncodeSnapshot(cart)
		if err != nil {
			return "0 valid / 1 invalid", err
		}
		if _, err := io.WriteString(ow, canonical+"\n"); err != nil {
			return resSummary, fmt.Errorf("write json: %w", err)
		}
		return "1 valid / 0 invalid", nil

	case FormatJSONL:
		result, err := ValidateJSONLStream(ctx, validator, file, ow)
		if err != nil {
			return resSummary, err
		}
		return fmt.Sprintf("%d valid / %d invalid", result.ValidLinesCount, result.InvalidLinesCount), nil

	default:
		return resSummary, fmt.Errorf("unsupported format: %s", format)
	}
}
