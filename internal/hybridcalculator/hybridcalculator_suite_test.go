package hybridcalculator_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHybridCalculator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HybridCalculator Suite")
}
