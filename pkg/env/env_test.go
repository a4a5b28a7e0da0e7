package env

import (
	"testing"
	"time"
)

func TestGetEnvInt(t *testing.T) {
	t.Setenv("RINGWAY_TEST_INT", "42")
	if got := GetEnvInt("RINGWAY_TEST_INT", 7); got != 42 {
		t.Fatalf("GetEnvInt valid value = %d, want 42", got)
	}

	t.Setenv("RINGWAY_TEST_INT", "not-int")
	if got := GetEnvInt("RINGWAY_TEST_INT", 7); got != 7 {
		t.Fatalf("GetEnvInt invalid value = %d, want 7", got)
	}

	t.Setenv("RINGWAY_TEST_INT", "")
	if got := GetEnvInt("RINGWAY_TEST_INT", 7); got != 7 {
		t.Fatalf("GetEnvInt empty value = %d, want 7", got)
	}
}

func TestGetEnvInt64(t *testing.T) {
	t.Setenv("RINGWAY_TEST_INT64", "8192")
	if got := GetEnvInt64("RINGWAY_TEST_INT64", 1024); got != 8192 {
		t.Fatalf("GetEnvInt64 valid value = %d, want 8192", got)
	}

	t.Setenv("RINGWAY_TEST_INT64", "not-int")
	if got := GetEnvInt64("RINGWAY_TEST_INT64", 1024); got != 1024 {
		t.Fatalf("GetEnvInt64 invalid value = %d, want 1024", got)
	}

	t.Setenv("RINGWAY_TEST_INT64", "")
	if got := GetEnvInt64("RINGWAY_TEST_INT64", 1024); got != 1024 {
		t.Fatalf("GetEnvInt64 empty value = %d, want 1024", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("RINGWAY_TEST_BOOL", "true")
	if got := GetEnvBool("RINGWAY_TEST_BOOL", false); got != true {
		t.Fatalf("GetEnvBool true = %v, want true", got)
	}

	t.Setenv("RINGWAY_TEST_BOOL", "FALSE")
	if got := GetEnvBool("RINGWAY_TEST_BOOL", true); got != false {
		t.Fatalf("GetEnvBool false = %v, want false", got)
	}

	t.Setenv("RINGWAY_TEST_BOOL", "not-bool")
	if got := GetEnvBool("RINGWAY_TEST_BOOL", true); got != true {
		t.Fatalf("GetEnvBool invalid = %v, want true", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("RINGWAY_TEST_DURATION", "1h2m3s")
	if got := GetEnvDuration("RINGWAY_TEST_DURATION", 5*time.Second); got != time.Hour+2*time.Minute+3*time.Second {
		t.Fatalf("GetEnvDuration valid = %v, want %v", got, time.Hour+2*time.Minute+3*time.Second)
	}

	t.Setenv("RINGWAY_TEST_DURATION", "not-duration")
	if got := GetEnvDuration("RINGWAY_TEST_DURATION", 5*time.Second); got != 5*time.Second {
		t.Fatalf("GetEnvDuration invalid = %v, want %v", got, 5*time.Second)
	}
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("RINGWAY_TEST_STRING", "blocking")
	if got := GetEnvString("RINGWAY_TEST_STRING", "busyspin"); got != "blocking" {
		t.Fatalf("GetEnvString valid = %q, want %q", got, "blocking")
	}

	t.Setenv("RINGWAY_TEST_STRING", "")
	if got := GetEnvString("RINGWAY_TEST_STRING", "busyspin"); got != "busyspin" {
		t.Fatalf("GetEnvString empty = %q, want %q", got, "busyspin")
	}
}
