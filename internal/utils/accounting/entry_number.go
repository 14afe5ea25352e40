package accounting

import (
	"fmt"
	"regexp"
	"strconv"
)

// EntryNumberPrefix is the prefix for journal entry numbers.
const EntryNumberPrefix = "JE"

// entryNumberRe matches the wire/storage-visible entry number contract.
var entryNumberRe = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d{6})$`)

// FormatEntryNumber renders a sequence as an entry number, e.g.
// FormatEntryNumber("JE", 2025, 1) -> "JE-2025-000001".
func FormatEntryNumber(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, sequence)
}

// ParseEntryNumber splits an entry number into prefix, year, and sequence.
func ParseEntryNumber(number string) (prefix string, year int, sequence int64, err error) {
	m := entryNumberRe.FindStringSubmatch(number)
	if m == nil {
		return "", 0, 0, fmt.Errorf("malformed entry number %q", number)
	}
	year, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed entry number %q: %w", number, err)
	}
	sequence, err = strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed entry number %q: %w", number, err)
	}
	return m[1], year, sequence, nil
}
