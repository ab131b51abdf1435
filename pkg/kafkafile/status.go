package kafkafile

// Status is the outcome of a registry operation. Store and backend failures
// never reach callers as errors; they are logged and mapped to a Status.
type Status int

// Outcome codes.
const (
	StatusSuccess Status = iota
	StatusParamIllegal
	StatusResourceNotExist
	StatusResourceAlreadyExisted
	StatusResourceNameDuplicated
	StatusUploadFileFail
	StatusDownloadFileFail
	StatusOperationFailed
	StatusFileTypeNotSupported
	StatusMetadataError
)

var statusInfo = map[Status]struct {
	code    int
	message string
}{
	StatusSuccess:                {0, "success"},
	StatusParamIllegal:           {1400, "param illegal"},
	StatusOperationFailed:        {1401, "operation failed"},
	StatusResourceNotExist:       {1404, "resource not exist"},
	StatusResourceAlreadyExisted: {1409, "resource already existed"},
	StatusResourceNameDuplicated: {1410, "resource name duplicated"},
	StatusFileTypeNotSupported:   {1415, "file type not supported"},
	StatusMetadataError:          {1500, "metadata store error"},
	StatusUploadFileFail:         {1502, "upload file failed"},
	StatusDownloadFileFail:       {1503, "download file failed"},
}

// Code returns the stable numeric code of the status used on the wire.
func (s Status) Code() int {
	if info, ok := statusInfo[s]; ok {
		return info.code
	}
	return -1
}

// String returns the status message.
func (s Status) String() string {
	if info, ok := statusInfo[s]; ok {
		return info.message
	}
	return "unknown status"
}

// OK reports whether the status is StatusSuccess.
func (s Status) OK() bool { return s == StatusSuccess }
