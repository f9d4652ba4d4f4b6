package services

import (
	"os"
	"testing"

	"github.com/raymond0208/CashCatalyst/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}
