package catalog

// DefaultBooks は起動時に投入される書籍データセットを返します。
func DefaultBooks() map[string]Book {
	return map[string]Book{
		"1": {Title: "Things Fall Apart", Author: "Chinua Achebe"},
		"2": {Title: "Fairy tales", Author: "Hans Christian Andersen"},
		"3": {Title: "The Divine Comedy", Author: "Dante Alighieri"},
		"4": {Title: "The Epic Of Gilgamesh", Author: "Unknown"},
		"5": {Title: "The Book Of Job", Author: "Unknown"},
		"6": {Title: "One Thousand and One Nights", Author: "Unknown"},
		"7": {Title: "Njal's Saga", Author: "Unknown"},
		"8": {Title: "Pride and Prejudice", Author: "Jane Austen"},
		"9": {Title: "Le Pere Goriot", Author: "Honore de Balzac"},
		"10": {Title: "Molloy, Malone Dies, The Unnamable, the trilogy", Author: "Samuel Beckett"},
	}
}
