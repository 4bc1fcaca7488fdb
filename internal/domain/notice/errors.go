package notice

import "neighborly/internal/apperror"

var (
	ErrNotFound            = apperror.ErrNoticeNotFound
	ErrUrgentQuotaExceeded = apperror.ErrUrgentQuotaExceeded
)
