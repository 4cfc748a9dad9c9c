package stratumclient

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/heliopool/poolmanager/internal/interfaces"
)

// workPackageFromParams decodes a mining.notify params array of the shape
// [jobID, headerHex, boundaryHex, epochHex, cleanJobs]. jobID and cleanJobs
// are accepted but not surfaced: the pool manager's WorkPackage carries
// only what §4.3 acts on (header, boundary, epoch).
func workPackageFromParams(params []any) (interfaces.WorkPackage, bool) {
	if len(params) < 4 {
		return interfaces.WorkPackage{}, false
	}

	headerHex, ok := params[1].(string)
	if !ok {
		return interfaces.WorkPackage{}, false
	}
	boundaryHex, ok := params[2].(string)
	if !ok {
		return interfaces.WorkPackage{}, false
	}
	epochHex, ok := params[3].(string)
	if !ok {
		return interfaces.WorkPackage{}, false
	}

	var wp interfaces.WorkPackage
	if !decodeHash32(headerHex, &wp.Header) {
		return interfaces.WorkPackage{}, false
	}
	if !decodeHash32(boundaryHex, &wp.Boundary) {
		return interfaces.WorkPackage{}, false
	}
	epoch, err := strconv.ParseUint(strings.TrimPrefix(epochHex, "0x"), 16, 64)
	if err != nil {
		return interfaces.WorkPackage{}, false
	}
	wp.Epoch = epoch

	return wp, true
}

func decodeHash32(hexStr string, out *[32]byte) bool {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	if len(hexStr)%2 != 0 {
		hexStr = "0" + hexStr
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return false
	}
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return true
}
