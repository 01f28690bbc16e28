package xerr

import "fmt"

const bytesPerMB = 1024 * 1024

// QuotaExceededError carries the figures the client needs to explain a
// rejected upload. It unwraps to ErrQuotaExceeded for errors.Is checks.
type QuotaExceededError struct {
	AvailableBytes uint64
	RequestedBytes uint64
	TotalBytes     uint64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Storage quota exceeded. Available space: %dMB, Requested: %dMB, Total quota: %dMB",
		e.AvailableBytes/bytesPerMB, e.RequestedBytes/bytesPerMB, e.TotalBytes/bytesPerMB)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

func NewQuotaExceededError(available, requested, total uint64) *QuotaExceededError {
	return &QuotaExceededError{
		AvailableBytes: available,
		RequestedBytes: requested,
		TotalBytes:     total,
	}
}
