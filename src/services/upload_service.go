package services

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/models"
	"github.com/raymond0208/CashCatalyst/src/parsers"
	"github.com/raymond0208/CashCatalyst/src/taxonomy"
	"github.com/raymond0208/CashCatalyst/src/utils"
)

type uploadServiceImpl struct {
	classifier *taxonomy.Classifier
}

func NewUploadService(classifier *taxonomy.Classifier) UploadService {
	return &uploadServiceImpl{classifier: classifier}
}

// Preview parses an uploaded file into cleaned, classified transactions.
// Rows with an unusable date or amount are dropped and counted, never fatal;
// the client reviews the result and confirms with a bulk save.
func (s *uploadServiceImpl) Preview(fileReader io.Reader, filename string, userID int64) (*UploadPreview, error) {
	parser, err := parsers.GetParser(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	rawRows, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	batchID := uuid.NewString()
	var cleaned []models.Transaction
	skipped := 0
	for i, row := range rawRows {
		date := utils.ParseDate(row.Date)
		if date.IsZero() {
			logger.L.Debug("Skipping upload row with bad date", "userID", userID, "row", i+1, "date", row.Date)
			skipped++
			continue
		}
		amount, err := utils.ParseAmountFloat(row.Amount)
		if err != nil {
			logger.L.Debug("Skipping upload row with bad amount", "userID", userID, "row", i+1, "amount", row.Amount)
			skipped++
			continue
		}

		source := row.Type
		if source == "" {
			source = row.Description
		}

		cleaned = append(cleaned, models.Transaction{
			UserID:      userID,
			Date:        date.Format(utils.DefaultDateFormat),
			Description: row.Description,
			Amount:      amount,
			Type:        s.classifier.Classify(source),
		})
	}

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: %d rows skipped", ErrNoValidRows, skipped)
	}

	logger.L.Info("Upload preview ready", "userID", userID, "batchID", batchID,
		"rows", len(cleaned), "skipped", skipped)
	return &UploadPreview{
		BatchID:      batchID,
		Transactions: cleaned,
		SkippedRows:  skipped,
	}, nil
}
