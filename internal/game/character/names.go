package character

// DefaultNames is the recruit name pool used when no other is configured.
var DefaultNames = []string{
	"Aldric", "Bryn", "Cassia", "Doran", "Elspeth", "Fenwick", "Gisela", "Hale",
	"Isolde", "Jorund", "Kestrel", "Lioren", "Maren", "Niall", "Oswin", "Perrin",
	"Quilla", "Rowan", "Sigrun", "Tamsin", "Ulric", "Vesna", "Wendel", "Yara",
}
