package dialog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seu-repo/dining-concierge/internal/domain"
)

// MaxPartySize is the largest party a single order may book
const MaxPartySize = 20

const usCountryCode = "+1"

var supportedCities = map[string]struct{}{
	"new york": {},
}

var supportedCuisines = map[string]struct{}{
	"italian":  {},
	"chinese":  {},
	"mexican":  {},
	"lebanese": {},
	"japanese": {},
}

// dateLayouts are the human date formats accepted for the Date slot
var dateLayouts = []string{
	"2006-01-02",
	"01-02-2006",
	"01/02/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// Validate checks the slots in SlotOrder and reports the first violation.
// Slots that are unset are never violations.
func Validate(slots domain.Slots, tc TimeContext) domain.ValidationResult {
	if location := slots.Get(domain.SlotLocation); location != "" && !isSupportedCity(location) {
		return domain.Invalid(domain.SlotLocation, fmt.Sprintf(
			"We currently do not support %s as a valid destination. Try searching for New York?", location))
	}

	if cuisine := slots.Get(domain.SlotCuisine); cuisine != "" && !isSupportedCuisine(cuisine) {
		return domain.Invalid(domain.SlotCuisine,
			"I did not recognize that cuisine. What type of cuisine would you like to order? "+
				"Popular cuisines are chinese, lebanese, japanese, italian or mexican")
	}

	var (
		date    time.Time
		hasDate bool
	)
	if raw := slots.Get(domain.SlotDate); raw != "" {
		parsed, ok := parseDate(raw, tc.location())
		if !ok {
			return domain.Invalid(domain.SlotDate,
				"I did not understand that, what date would you like to book a reservation? "+
					"Please enter date in the format MM-DD-YYYY (with hyphens)")
		}
		if parsed.Before(tc.Today()) {
			return domain.Invalid(domain.SlotDate,
				"You can book restaurants from today onwards. Can you try a different date?")
		}
		date, hasDate = parsed, true
	}

	// Only same-day bookings are checked, and only at hour granularity.
	if raw := slots.Get(domain.SlotTime); raw != "" && hasDate && sameDay(date, tc.Today()) {
		hour, ok := parseHour(raw)
		if !ok {
			return domain.Invalid(domain.SlotTime,
				"I did not understand that time. Please enter a time like 19:30")
		}
		if hour <= tc.Now.Hour() {
			return domain.Invalid(domain.SlotTime,
				"Time you entered has already passed. Please try a different time?")
		}
	}

	if phone := slots.Get(domain.SlotPhoneNumber); phone != "" {
		if !strings.HasPrefix(phone, usCountryCode) {
			return domain.Invalid(domain.SlotPhoneNumber,
				"The phone number entered does not have the country code or is not a US phone number. "+
					"Please enter a US number starting with +1")
		}
		if !isTenDigits(strings.TrimPrefix(phone, usCountryCode)) {
			return domain.Invalid(domain.SlotPhoneNumber,
				"The phone number entered is not a valid phone number. "+
					"Please enter a valid number starting with +1")
		}
	}

	if raw := slots.Get(domain.SlotNumberOfPeople); raw != "" {
		people, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Invalid(domain.SlotNumberOfPeople,
				"I did not understand the number of people. Please enter a valid number of people")
		}
		if people > MaxPartySize {
			return domain.Invalid(domain.SlotNumberOfPeople, fmt.Sprintf(
				"The number of people cannot be more than %d. Please enter a valid number of people", MaxPartySize))
		}
	}

	return domain.Valid()
}

func isSupportedCity(city string) bool {
	_, ok := supportedCities[strings.ToLower(city)]
	return ok
}

func isSupportedCuisine(cuisine string) bool {
	_, ok := supportedCuisines[strings.ToLower(cuisine)]
	return ok
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHour reads the hour component of "HH:MM" or a bare "HH"
func parseHour(raw string) (int, bool) {
	hourPart, _, _ := strings.Cut(raw, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
