package exchange

import (
	"testing"

	"github.com/settle-next/internal/models"
)

func amt(t *testing.T, value string) models.Amount {
	t.Helper()
	a, err := models.NewAmountFromString(value)
	if err != nil {
		t.Fatalf("invalid amount %s: %v", value, err)
	}
	return a
}

func TestGetAmountOut(t *testing.T) {
	// 1000/1000 储备，输入 100：100*997*1000 / (1000*1000 + 100*997) = 90
	out, err := getAmountOut(amt(t, "100"), amt(t, "1000"), amt(t, "1000"))
	if err != nil {
		t.Fatalf("getAmountOut error: %v", err)
	}
	if out.String() != "90" {
		t.Fatalf("expected 90, got %s", out.String())
	}
}

func TestGetAmountIn(t *testing.T) {
	// 反向：取出 90 需要的输入向上取整回到 100
	in, err := getAmountIn(amt(t, "90"), amt(t, "1000"), amt(t, "1000"))
	if err != nil {
		t.Fatalf("getAmountIn error: %v", err)
	}
	if in.String() != "100" {
		t.Fatalf("expected 100, got %s", in.String())
	}
}

func TestGetAmountInRoundsUp(t *testing.T) {
	in, err := getAmountIn(amt(t, "1"), amt(t, "1000"), amt(t, "1000"))
	if err != nil {
		t.Fatalf("getAmountIn error: %v", err)
	}
	// 1000*1*1000/(999*997) = 1.004... 必须向上取整
	if in.String() != "2" {
		t.Fatalf("expected 2, got %s", in.String())
	}
}

func TestGetAmountInExceedsReserve(t *testing.T) {
	if _, err := getAmountIn(amt(t, "1000"), amt(t, "1000"), amt(t, "1000")); err == nil {
		t.Fatalf("expected error when amountOut drains the reserve")
	}
	if _, err := getAmountIn(amt(t, "2000"), amt(t, "1000"), amt(t, "1000")); err == nil {
		t.Fatalf("expected error when amountOut exceeds the reserve")
	}
}

func TestGetAmountOutZeroInput(t *testing.T) {
	if _, err := getAmountOut(amt(t, "0"), amt(t, "1000"), amt(t, "1000")); err == nil {
		t.Fatalf("expected error for zero input")
	}
}

func TestGetAmountOutNoLiquidity(t *testing.T) {
	if _, err := getAmountOut(amt(t, "100"), amt(t, "0"), amt(t, "0")); err == nil {
		t.Fatalf("expected error for empty reserves")
	}
}
