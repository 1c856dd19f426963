package validate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Gunvolt24/shoecart/internal/ports"
)

// JSONLResult - статистика валидации потока JSONL.
type JSONLResult struct {
	ValidLinesCount   int
	InvalidLinesCount int
}

// ValidateJSONLStream - читает JSONL (один снапшот корзины на строку), валидирует каждую строку,
// валидные пишет в writer в каноническом виде. Пустые строки пропускаются.
func ValidateJSONLStream(ctx context.Context, validator ports.SnapshotValidator, ir io.Reader, ow io.Writer) (JSONLResult, error) {
	var res JSONLResult

	scanner := bufio.NewScanner(ir)
	// запас на большие строки
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		lineBytes := scanner.Bytes()
		if len(strings.TrimSpace(string(lineBytes))) == 0 {
			continue
		}

		cart, err := DecodeSnapshot(ctx, validator, lineBytes)
		if err != nil {
			res.InvalidLinesCount++
			continue
		}

		canonical, err := EncodeSnapshot(cart)
		if err != nil {
			res.InvalidLinesCount++
			continue
		}
		if _, err := io.WriteString(ow, canonical+"\n"); err != nil {
			return res, fmt.Errorf("write valid line: %w", err)
		}
		res.ValidLinesCount++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}
