package httpx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrBadProductID - id товара в пути не является положительным целым.
var ErrBadProductID = errors.New("product id must be a positive integer")

// ParseProductID - читает положительный целый id из path-параметра name.
func ParseProductID(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, ErrBadProductID
	}
	return id, nil
}
