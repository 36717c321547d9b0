package types

import (
	"log/slog"

	"github.com/google/uuid"
)

type (
	GitHubAppID         int64
	GitHubAppInstallID  int64
	GitHubAppSecret     string
	GitHubAppPrivateKey string
	RequestID           string
	TestStatus          string
	BadgeOutcome        string
)

// Test statuses match the values stored in the test_results table.
const (
	TestStatusPass    TestStatus = "PASS"
	TestStatusFailed  TestStatus = "FAILED"
	TestStatusError   TestStatus = "ERROR"
	TestStatusUnknown TestStatus = "unknown"
)

const (
	BadgeInserted            BadgeOutcome = "inserted"
	BadgeAlreadyPresent      BadgeOutcome = "already_present"
	BadgeSkippedNoPermission BadgeOutcome = "skipped_no_permission"
	BadgeFailed              BadgeOutcome = "failed"
)

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func (x GitHubAppSecret) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubAppSecret) String() string {
	return "***********"
}

func (x GitHubAppPrivateKey) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubAppPrivateKey) String() string {
	return "***********"
}
