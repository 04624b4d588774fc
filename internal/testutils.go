package internal

import (
	"fmt"
	"testing"
	"time"
)

// FailureMessage reports a got/want mismatch
func FailureMessage(t testing.TB, got, want interface{}) {
	t.Helper()
	t.Errorf("\nGot:  %+v\nWant: %+v", got, want)
}

// AssertNoError stops the test on an unexpected error
func AssertNoError(t testing.TB, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
}

// AssertEqual checks that the values are equal, naming both types when they differ
func AssertEqual(t testing.TB, got, want interface{}) {
	t.Helper()

	if got != want {
		if fmt.Sprintf("%T", got) != fmt.Sprintf("%T", want) {
			t.Errorf("\nGot:  %+v (%T)\nWant: %+v (%T)", got, got, want, want)
			return
		}
		FailureMessage(t, got, want)
	}
}

// AssertTrue checks that the value is true
func AssertTrue(t testing.TB, got bool) {
	t.Helper()

	if !got {
		t.Error("Expected to be true, but it wasn't")
	}
}

// AssertNotEmptyString checks the string is not the empty string
func AssertNotEmptyString(t testing.TB, got string) {
	t.Helper()

	if got == "" {
		t.Error("unexpected empty string")
	}
}

// Within fails the test if assert does not return within d
func Within(t testing.TB, d time.Duration, assert func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert()
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		t.Errorf("timed out after %s", d)
	case <-done:
	}
}
