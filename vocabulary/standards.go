package vocabulary

// XML Schema datatype IRIs seen on typed literals in result sets.
const (
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble  = "http://www.w3.org/2001/XMLSchema#double"
	XSDGYear   = "http://www.w3.org/2001/XMLSchema#gYear"
)

// IsNumericDatatype reports whether datatype is one of the XSD numeric types.
func IsNumericDatatype(datatype string) bool {
	switch datatype {
	case XSDInteger, XSDDecimal, XSDDouble:
		return true
	default:
		return false
	}
}
