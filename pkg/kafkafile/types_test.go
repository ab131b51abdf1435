package kafkafile_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

func TestFileTypes(t *testing.T) {
	types := kafkafile.FileTypes()
	require.Len(t, types, 2)
	assert.Equal(t, 0, types[0].Code)
	assert.Equal(t, ".tgz", types[0].Suffix)
	assert.Equal(t, 1, types[1].Code)
	assert.Equal(t, ".properties", types[1].Suffix)

	ft, ok := kafkafile.FileTypeByCode(1)
	assert.True(t, ok)
	assert.True(t, ft.Previewable())

	ft, ok = kafkafile.FileTypeByCode(0)
	assert.True(t, ok)
	assert.False(t, ft.Previewable())

	_, ok = kafkafile.FileTypeByCode(2)
	assert.False(t, ok)
}

func TestStorageKinds(t *testing.T) {
	kinds := kafkafile.StorageKinds()
	require.Len(t, kinds, 3)
	assert.Equal(t, "memory", kinds[0].Message)
	assert.Equal(t, "fs", kinds[1].Message)
	assert.Equal(t, "s3", kinds[2].Message)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, validMd5+"/server.properties", kafkafile.ObjectKey("server.properties", validMd5))
	assert.NotEqual(t,
		kafkafile.ObjectKey("server.properties", validMd5),
		kafkafile.ObjectKey("server.properties", kafkafile.Md5Hex([]byte("x"))))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status  kafkafile.Status
		code    int
		message string
	}{
		{kafkafile.StatusSuccess, 0, "success"},
		{kafkafile.StatusParamIllegal, 1400, "param illegal"},
		{kafkafile.StatusResourceNotExist, 1404, "resource not exist"},
		{kafkafile.StatusResourceAlreadyExisted, 1409, "resource already existed"},
		{kafkafile.StatusResourceNameDuplicated, 1410, "resource name duplicated"},
		{kafkafile.StatusUploadFileFail, 1502, "upload file failed"},
		{kafkafile.StatusOperationFailed, 1401, "operation failed"},
		{kafkafile.StatusFileTypeNotSupported, 1415, "file type not supported"},
		{kafkafile.StatusMetadataError, 1500, "metadata store error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.status.Code())
			assert.Equal(t, tt.message, tt.status.String())
			assert.Equal(t, tt.status == kafkafile.StatusSuccess, tt.status.OK())
		})
	}

	assert.Equal(t, -1, kafkafile.Status(99).Code())
}

func TestChecksumReader(t *testing.T) {
	cr := kafkafile.NewChecksumReader(strings.NewReader("hello"))
	buf := make([]byte, 16)
	n, _ := cr.Read(buf)

	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), cr.Size())
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", cr.Sum())
	assert.NoError(t, cr.Verify("5D41402ABC4B2A76B9719D911017C592"))

	err := cr.Verify(validMd5)
	assert.True(t, errors.Is(err, kafkafile.ErrChecksumMismatch))
}

func TestErrorsUnwrap(t *testing.T) {
	err := &kafkafile.RecordError{ID: 1, Name: "a.properties", Op: "insert", Err: kafkafile.ErrDuplicateFileName}
	assert.True(t, errors.Is(err, kafkafile.ErrDuplicateFileName))
	assert.Contains(t, err.Error(), "a.properties")

	serr := &kafkafile.StorageError{Backend: "fs", Key: "k", Op: "download", Err: kafkafile.ErrObjectNotFound}
	assert.True(t, errors.Is(serr, kafkafile.ErrObjectNotFound))
	assert.Contains(t, serr.Error(), "fs")
}
