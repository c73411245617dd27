package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig    ErrorCode = "invalid_configuration"
	ErrMissingConfig    ErrorCode = "missing_configuration"
	ErrBindFlags        ErrorCode = "bind_flags_failed"
	ErrReadConfig       ErrorCode = "read_config_failed"
	ErrInvalidInterval  ErrorCode = "invalid_interval"
	ErrInvalidStationID ErrorCode = "invalid_station_id"
	ErrInvalidFactor    ErrorCode = "invalid_compensation_factor"
	ErrInvalidProvider  ErrorCode = "invalid_storage_provider"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Collection errors
	ErrSensorRead   ErrorCode = "sensor_read_failed"
	ErrHealthProbe  ErrorCode = "health_probe_failed"
	ErrBatchFlush   ErrorCode = "batch_flush_failed"
	ErrEmptyBatch   ErrorCode = "empty_batch"
	ErrMainLoop     ErrorCode = "main_loop_failed"
	ErrInitSensors  ErrorCode = "init_sensors_failed"
	ErrInitStation  ErrorCode = "init_station_failed"

	// Storage errors
	ErrWriteFailed     ErrorCode = "partition_write_failed"
	ErrEncodeFailed    ErrorCode = "parquet_encode_failed"
	ErrInvalidCodec    ErrorCode = "invalid_compression_codec"

	// Sync errors
	ErrSyncList    ErrorCode = "sync_list_failed"
	ErrSyncUpload  ErrorCode = "sync_upload_failed"
	ErrSyncOffline ErrorCode = "sync_offline"
	ErrInitStore   ErrorCode = "init_object_store_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrUnavailable:      "Service unavailable",
	ErrInvalidConfig:    "Invalid configuration",
	ErrMissingConfig:    "Missing configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read configuration",
	ErrInvalidInterval:  "Invalid interval value",
	ErrInvalidStationID: "Invalid station identifier",
	ErrInvalidFactor:    "Invalid compensation factor",
	ErrInvalidProvider:  "Unknown storage provider",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrSensorRead:       "Failed to read sensor",
	ErrHealthProbe:      "Health probe failed",
	ErrBatchFlush:       "Failed to flush batch",
	ErrEmptyBatch:       "No buffered readings to flush",
	ErrMainLoop:         "Error in main loop",
	ErrInitSensors:      "Failed to initialize sensors",
	ErrInitStation:      "Failed to initialize station",
	ErrWriteFailed:      "Failed to write partition file",
	ErrEncodeFailed:     "Failed to encode parquet rows",
	ErrInvalidCodec:     "Unknown compression codec",
	ErrSyncList:         "Failed to list remote objects",
	ErrSyncUpload:       "Failed to upload file",
	ErrSyncOffline:      "Sync engine is offline",
	ErrInitStore:        "Failed to initialize object store",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
