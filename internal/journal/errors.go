package journal

import "github.com/opensensor/stationd/internal/errors"

const (
	ErrInvalidDBPath    = errors.ErrorCode("journal_invalid_db_path")
	ErrInvalidEvent     = errors.ErrorCode("journal_invalid_event")
	ErrStorageAccess    = errors.ErrorCode("journal_storage_access_failed")
	ErrStorageInit      = errors.ErrorCode("journal_storage_init_failed")
	ErrStorageClose     = errors.ErrorCode("journal_storage_close_failed")
	ErrSchemaInitFailed = errors.ErrorCode("journal_schema_init_failed")
)
