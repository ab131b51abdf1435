package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

// Response is the envelope of every API response.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// httpStatus maps a registry outcome to an HTTP status code
func httpStatus(status kafkafile.Status) int {
	switch status {
	case kafkafile.StatusSuccess:
		return http.StatusOK
	case kafkafile.StatusParamIllegal:
		return http.StatusBadRequest
	case kafkafile.StatusResourceNotExist:
		return http.StatusNotFound
	case kafkafile.StatusResourceAlreadyExisted, kafkafile.StatusResourceNameDuplicated:
		return http.StatusConflict
	case kafkafile.StatusFileTypeNotSupported:
		return http.StatusUnsupportedMediaType
	case kafkafile.StatusOperationFailed:
		return http.StatusUnprocessableEntity
	case kafkafile.StatusUploadFileFail, kafkafile.StatusDownloadFileFail:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func renderStatus(w http.ResponseWriter, r *http.Request, status kafkafile.Status, data interface{}) {
	render.Status(r, httpStatus(status))
	render.JSON(w, r, Response{
		Code:    status.Code(),
		Message: status.String(),
		Data:    data,
	})
}

func renderSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	renderStatus(w, r, kafkafile.StatusSuccess, data)
}

func renderParamError(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Response{
		Code:    kafkafile.StatusParamIllegal.Code(),
		Message: message,
	})
}
