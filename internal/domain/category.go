package domain

type CategoryKey string

func (c CategoryKey) String() string {
	return string(c)
}

const (
	CategoryKeyLaptop      CategoryKey = "laptops"
	CategoryKeyCPU         CategoryKey = "cpus"
	CategoryKeyGPU         CategoryKey = "gpus"
	CategoryKeyMotherboard CategoryKey = "mobos"
	CategoryKeyRAM         CategoryKey = "ram"
	CategoryKeyStorage     CategoryKey = "storage"
	CategoryKeyPSU         CategoryKey = "psu"
	CategoryKeyCase        CategoryKey = "case"
)

// CategoryKeys is the fixed enrichment order.
var CategoryKeys = []CategoryKey{
	CategoryKeyLaptop,
	CategoryKeyCPU,
	CategoryKeyGPU,
	CategoryKeyMotherboard,
	CategoryKeyRAM,
	CategoryKeyStorage,
	CategoryKeyPSU,
	CategoryKeyCase,
}

// GetCategoryLabel returns the search hint appended to product names.
func (c CategoryKey) GetCategoryLabel() string {
	switch c {
	case CategoryKeyLaptop:
		return "laptop"
	case CategoryKeyCPU:
		return "processor"
	case CategoryKeyGPU:
		return "graphics card"
	case CategoryKeyMotherboard:
		return "motherboard"
	case CategoryKeyRAM:
		return "RAM memory"
	case CategoryKeyStorage:
		return "SSD"
	case CategoryKeyPSU:
		return "power supply"
	case CategoryKeyCase:
		return "PC case"
	default:
		return ""
	}
}
