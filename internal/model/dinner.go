package model

import "time"

// DateLayout and TimeLayout are the wire formats for a dinner's calendar
// date and local time-of-day.  They match the seed document and the
// persisted snapshots, where both travel as plain strings.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ImageAttribution credits the photographer of a listing image sourced
// through the image search collaborator.
type ImageAttribution struct {
	Photographer string `json:"photographer"`
	SourceURL    string `json:"sourceUrl"`
}

// Dinner represents a hosted event listing.  It is persisted as part of the
// `dinners` collection and, for host-created records, additionally in the
// `newlyCreatedDinners` side-log.
//
// Fields:
//  ID               – opaque unique identifier.
//  Title            – listing title.
//  Description      – free-text description.
//  Category         – cuisine/category label.  The vocabulary is open;
//                     different views use different sets, so no enum here.
//  Cuisine          – optional secondary cuisine label kept for search.
//  Location         – optional venue description.
//  Date             – calendar date, DateLayout.
//  Time             – local time-of-day, TimeLayout.
//  Price            – per-seat price, never negative.
//  MaxGuests        – seat capacity, always positive.
//  CurrentGuests    – derived booked-seat count.  A stored copy is never
//                     trusted; repositories recompute it from reservations
//                     before handing a Dinner out.
//  HostID           – id of the hosting user.
//  HostName         – denormalized host display name.
//  Image            – listing image URL.
//  ImageAttribution – optional photographer credit.
//  IsPublic         – false means draft, excluded from public listings.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Dinner struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	Cuisine          string            `json:"cuisineType,omitempty"`
	Location         string            `json:"location,omitempty"`
	Date             string            `json:"date"`
	Time             string            `json:"time"`
	Price            float64           `json:"price"`
	MaxGuests        int               `json:"maxGuests"`
	CurrentGuests    int               `json:"currentGuests"`
	HostID           string            `json:"hostId"`
	HostName         string            `json:"hostName"`
	Image            string            `json:"image,omitempty"`
	ImageAttribution *ImageAttribution `json:"imageAttribution,omitempty"`
	IsPublic         bool              `json:"isPublic"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// StartsAt parses the dinner's date and time into a single instant in loc.
// The boolean is false when either field is malformed.
func (d Dinner) StartsAt(loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, d.Date+" "+d.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Day parses just the calendar date.  Listing pages compare by day only,
// while availability uses the full date+time via StartsAt.
func (d Dinner) Day(loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, d.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
