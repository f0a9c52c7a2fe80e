package entity

// Listing is an item offered for sale by a seller.
// ImagePath is the public path or URL of the stored image.
// Sold starts false and is never changed by this service.
type Listing struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	SellerID    int64   `json:"seller_id"`
	ImagePath   string  `json:"image_path"`
	Sold        bool    `json:"sold"`
}
