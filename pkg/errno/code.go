package errno

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrParameterInvalid = &Errno{Code: 400, Message: "Invalid parameter %s"}
	ErrInvalidParam     = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized     = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound         = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMissingParam          = &Errno{Code: 20001, Message: "Missing required parameter"}
	ErrFileNameIllegal       = &Errno{Code: 20002, Message: "File name is illegal"}
	ErrFileSizeIllegal       = &Errno{Code: 20003, Message: "File size is illegal"}
	ErrUploadIllegal         = &Errno{Code: 20004, Message: "Upload files is illegal"}
	ErrUploadError           = &Errno{Code: 20005, Message: "Upload error"}
	ErrPartIncomplete        = &Errno{Code: 20006, Message: "Upload part is incomplete"}
	ErrMinIoBuckNameNotExist = &Errno{Code: 20007, Message: "Minio bucket name does not exist"}

	// 合成服务错误码
	ErrCompileJobNotFound      = &Errno{Code: 20008, Message: "Compile job not found"}
	ErrInvalidJobStatus        = &Errno{Code: 20009, Message: "Invalid job status"}
	ErrCompileJobExists        = &Errno{Code: 20010, Message: "Compile job already exists"}
	ErrQueueFull               = &Errno{Code: 20011, Message: "Job queue is full"}
	ErrUserUUIDRequired        = &Errno{Code: 20012, Message: "User UUID is required"}
	ErrJobUUIDRequired         = &Errno{Code: 20013, Message: "Job UUID is required"}
	ErrSessionUUIDRequired     = &Errno{Code: 20014, Message: "Session UUID is required"}
	ErrClipsRequired           = &Errno{Code: 20015, Message: "Question clips are required"}
	ErrQuestionCountOutOfRange = &Errno{Code: 20016, Message: "Question count out of range (2-6)"}
	ErrNegativeDuration        = &Errno{Code: 20017, Message: "Durations must be non-negative"}
	ErrVolumeOutOfRange        = &Errno{Code: 20018, Message: "Volumes must be within [0,1]"}
	ErrInvalidResolution       = &Errno{Code: 20019, Message: "Invalid resolution tier"}
	ErrInvalidQuality          = &Errno{Code: 20020, Message: "Invalid quality tier"}
	ErrInvalidAspectRatio      = &Errno{Code: 20021, Message: "Invalid aspect ratio mode"}
	ErrInvalidFrameRate        = &Errno{Code: 20022, Message: "Invalid frame rate"}
	ErrSessionNotFound         = &Errno{Code: 20023, Message: "Game session not found"}
	ErrExportFormatUnsupported = &Errno{Code: 20024, Message: "Unsupported export format"}
	ErrConcatFailed            = &Errno{Code: 20025, Message: "Segment concatenation failed"}
	ErrJobCancelled            = &Errno{Code: 20026, Message: "Compile job cancelled"}
	ErrVideoUUIDRequired       = &Errno{Code: 20027, Message: "Video UUID is required"}
)
