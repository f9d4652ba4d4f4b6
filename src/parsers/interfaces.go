package parsers

import (
	"io"

	"github.com/raymond0208/CashCatalyst/src/models"
)

// Parser turns an uploaded tabular file into raw transaction rows. The file
// must carry a header row naming at least "date" and "amount" columns
// (case-insensitive); "description" and "type" are optional.
type Parser interface {
	Parse(file io.Reader) ([]models.RawTransaction, error)
}
