package reference

// Category is the internal evaluation category of a publication.
type Category string

const (
	CategoryACL  Category = "ACL"  // International journal with reading committee
	CategoryACTI Category = "ACTI" // International conference with proceedings
	CategoryOS   Category = "OS"   // Scientific book
	CategoryCOS  Category = "COS"  // Chapter of a scientific book
	CategoryAP   Category = "AP"   // Other production
	CategoryOV   Category = "OV"   // Outreach / manual
	CategoryRR   Category = "RR"   // Research report
	CategoryTH   Category = "TH"   // Doctoral thesis
	CategoryMEM  Category = "MEM"  // Master's thesis
)

// DefaultCategory returns the category assigned to newly imported records of kind k.
func DefaultCategory(k Kind) Category {
	switch k {
	case KindArticle:
		return CategoryACL
	case KindConference:
		return CategoryACTI
	case KindBook:
		return CategoryOS
	case KindBookChapter:
		return CategoryCOS
	case KindManual:
		return CategoryOV
	case KindTechReport:
		return CategoryRR
	case KindPhDThesis:
		return CategoryTH
	case KindMastersThesis:
		return CategoryMEM
	}
	return CategoryAP
}
