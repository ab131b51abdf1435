package kafkafile

import (
	"regexp"
	"strings"
)

var md5Pattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// ValidateCreate reports whether req can be used to register a new file.
// It has no side effects.
func ValidateCreate(req *FileRequest) bool {
	if req == nil || req.Content == nil || req.FileType == nil {
		return false
	}
	if !validFileName(req.FileName) || !validMd5(req.FileMd5) {
		return false
	}
	fileType, ok := FileTypeByCode(*req.FileType)
	if !ok || !SuffixMatches(req.FileName, fileType) {
		return false
	}
	// config files belong to a cluster; packages are shared
	if fileType != FileTypePackage && req.ClusterID < 0 {
		return false
	}
	return true
}

// ValidateModify reports whether req can be used to replace an existing
// file. The type is not required: it cannot change on modify.
func ValidateModify(req *FileRequest) bool {
	if req == nil || req.Content == nil || req.ID <= 0 {
		return false
	}
	return validFileName(req.FileName) && validMd5(req.FileMd5)
}

// SuffixMatches reports whether fileName ends with the suffix registered for
// fileType.
func SuffixMatches(fileName string, fileType FileType) bool {
	suffix := fileType.Suffix()
	if suffix == "" {
		return false
	}
	return strings.HasSuffix(fileName, suffix) && len(fileName) > len(suffix)
}

// validFileName rejects blank names and anything that could escape the blob
// key namespace.
func validFileName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}

func validMd5(sum string) bool {
	return md5Pattern.MatchString(sum)
}
