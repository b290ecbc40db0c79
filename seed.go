package main

import (
	"github.com/shopspring/decimal"

	"farmdirect/internal/models"
)

// defaultProducts is the catalog stored on first start.
func defaultProducts() []models.Product {
	p := func(name, price, unit, image string) models.Product {
		return models.Product{Name: name, Price: decimal.RequireFromString(price), Unit: unit, Image: image}
	}
	return []models.Product{
		p("Organic Tomatoes", "60", "1 kg", "https://images.unsplash.com/photo-1546470427-0d4db154ceb8"),
		p("Organic Potatoes", "45", "1 kg", "https://images.unsplash.com/photo-1518977676601-b53f82aba655"),
		p("Organic Onions", "50", "1 kg", "https://images.unsplash.com/photo-1618512496248-a07fe83aa8cb"),
		p("Fresh Spinach", "30", "250 g", "https://images.unsplash.com/photo-1576045057995-568f588f82fb"),
		p("Organic Carrots", "70", "1 kg", "https://images.unsplash.com/photo-1598170845058-32b9d6a5da37"),
		p("Alphonso Mangoes", "650", "1 dozen", "https://images.unsplash.com/photo-1553279768-865429fa0078"),
		p("Organic Bananas", "60", "1 dozen", "https://images.unsplash.com/photo-1571771894821-ce9b6c11b08e"),
		p("A2 Cow Milk", "90", "1 litre", "https://images.unsplash.com/photo-1563636619-e9143da7973b"),
		p("Desi Ghee", "850", "500 g", "https://images.unsplash.com/photo-1631452180519-c014fe946bc7"),
		p("Raw Forest Honey", "450", "500 g", "https://images.unsplash.com/photo-1587049352846-4a222e784d38"),
		p("Brown Rice", "140", "1 kg", "https://images.unsplash.com/photo-1586201375761-83865001e31c"),
		p("Cold Pressed Groundnut Oil", "320", "1 litre", "https://images.unsplash.com/photo-1474979266404-7eaacbcd87c5"),
	}
}
