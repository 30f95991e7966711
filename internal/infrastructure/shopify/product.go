package shopify

import "ims-storefront-bridge/internal/domain"

// go-shopify's Variant stops at option3, so product creation posts its own body.

type productRequest struct {
	Product productBody `json:"product"`
}

type productResponse struct {
	Product struct {
		ID     uint64 `json:"id"`
		Handle string `json:"handle"`
		Title  string `json:"title"`
	} `json:"product"`
}

type productBody struct {
	Handle   string        `json:"handle"`
	Title    string        `json:"title"`
	Variants []variantBody `json:"variants"`
	Images   []imageBody   `json:"images,omitempty"`
}

type variantBody struct {
	SKU     string `json:"sku"`
	Option1 string `json:"option1,omitempty"`
	Option2 string `json:"option2,omitempty"`
	Option3 string `json:"option3,omitempty"`
	Option4 string `json:"option4,omitempty"`
	Option5 string `json:"option5,omitempty"`
}

type imageBody struct {
	Src      string `json:"src"`
	Filename string `json:"filename,omitempty"`
}

func newProductBody(product *domain.TargetProduct) productBody {
	body := productBody{
		Handle:   product.Handle,
		Title:    product.Title,
		Variants: make([]variantBody, 0, len(product.Variants)),
	}

	for _, v := range product.Variants {
		body.Variants = append(body.Variants, variantBody{
			SKU:     v.SKU,
			Option1: v.Option(1),
			Option2: v.Option(2),
			Option3: v.Option(3),
			Option4: v.Option(4),
			Option5: v.Option(5),
		})
	}

	for _, img := range product.Images {
		body.Images = append(body.Images, imageBody{
			Src:      img.Src,
			Filename: img.FileName,
		})
	}

	return body
}
