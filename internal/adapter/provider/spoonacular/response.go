package spoonacular

// searchResponse is the body of GET /food/ingredients/search.
type searchResponse struct {
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"totalResults"`
}

type searchResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// informationResponse is the body of GET /food/ingredients/{id}/information.
type informationResponse struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Nutrition apiNutrition `json:"nutrition"`
}

type apiNutrition struct {
	Nutrients []apiNutrient `json:"nutrients"`
}

type apiNutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}
