package rpc

import "strings"

// ParseMethod splits a "Service.Method" name on the last dot, mirroring how
// service names themselves are permitted to contain dots (e.g. nested
// namespaces) while the method name never does.
func ParseMethod(full string) (service, method string, ok bool) {
	dot := strings.LastIndex(full, ".")
	if dot < 0 || dot == len(full)-1 {
		return "", "", false
	}
	return full[:dot], full[dot+1:], true
}

// JoinMethod is the inverse of ParseMethod.
func JoinMethod(service, method string) string {
	return service + "." + method
}
