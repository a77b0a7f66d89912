package insurance

import "regexp"

// vehicleNumberPattern matches registration plates like KA-01-AB-1234 or
// KA-03-A-2882: two uppercase letters, two digits, one or two uppercase
// letters, four digits, dash-separated. Full-string, case-sensitive.
var vehicleNumberPattern = regexp.MustCompile(`^[A-Z]{2}-\d{2}-[A-Z]{1,2}-\d{4}$`)

// IsValidVehicleNumber reports whether s is a well-formed registration plate.
func IsValidVehicleNumber(s string) bool {
	return vehicleNumberPattern.MatchString(s)
}

// IsValidVIN reports whether vin is exactly 10 characters (code points).
// The stored column allows the full 17-character VIN width, but the accepted
// input format is the 10-character short code.
func IsValidVIN(vin string) bool {
	return len([]rune(vin)) == 10
}
