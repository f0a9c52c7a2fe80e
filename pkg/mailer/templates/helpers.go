package templates

import "time"

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		if t.IsZero() {
			return
		}
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithImageURL(url string) Option { return func(d *EmailData) { d.ImageURL = url } }

func NewUserRegisteredData(appName string, userID int64, username string, opts ...Option) map[string]any {
	d := EmailData{AppName: appName, Type: UserRegistered, UserID: userID, Username: username}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}

func NewListingCreatedData(appName string, listingID int64, title, description string, price float64, sellerID int64, opts ...Option) map[string]any {
	d := EmailData{
		AppName:     appName,
		Type:        ListingCreated,
		ListingID:   listingID,
		Title:       title,
		Description: description,
		Price:       price,
		SellerID:    sellerID,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
