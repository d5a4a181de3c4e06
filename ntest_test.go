package nibs_test

import (
	"testing"

	"github.com/brimdata/nibs/ntest"
)

func TestNTests(t *testing.T) {
	ntest.Run(t, "ntests")
}
