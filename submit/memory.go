package submit

import (
	"math"
	"strconv"
	"strings"

	"github.com/DataWorkbench/paimonweb/qerror"
)

// ParseMemoryMB converts a sizing string such as "2GB", "512mb" or "1024"
// to megabytes. Without a GB or MB suffix the value is already in MB.
// A remainder that is not a non-negative integer fails with qerror.InvalidMemorySize.
func ParseMemoryMB(key string, value string) (int, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))

	var (
		size int
		err  error
	)
	if strings.Contains(upper, "GB") {
		size, err = strconv.Atoi(strings.ReplaceAll(upper, "GB", ""))
		if size > math.MaxInt/1024 {
			return 0, qerror.InvalidMemorySize.Format(value, key)
		}
		size *= 1024
	} else {
		size, err = strconv.Atoi(strings.ReplaceAll(upper, "MB", ""))
	}
	if err != nil || size < 0 {
		return 0, qerror.InvalidMemorySize.Format(value, key)
	}
	return size, nil
}
