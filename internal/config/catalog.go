package config

type Catalog struct {
	// PicturesBaseURL is joined with an item's picture file name to build
	// the picture URL returned by the API.
	PicturesBaseURL string `env:"CATALOG_PICTURES_BASE_URL" envDefault:"http://localhost:8000/pictures/"`
}
