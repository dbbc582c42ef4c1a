package axpert

// modelNames maps QGMN model codes to marketing names, per the vendor
// command reference.
var modelNames = map[string]string{
	"001": "VP-5000",
	"002": "VM-5000",
	"003": "VP-3000",
	"004": "VM-3000",
	"005": "MKS+-2000-48-LV-LY",
	"006": "Axpert MLV 3K-24",
	"007": "Axpert PLV 3K-24",
	"008": "Axpert MKS 3KP",
	"009": "Axpert KS 3KP",
	"010": "Axpert MKS 5KP",
	"011": "Axpert KS 5KP",
	"012": "Axpert MKS 4K/5K 64VDC",
	"013": "Axpert KS 4K/5K 64VDC",
	"014": "Axpert MKS 4K/5K",
	"015": "Axpert KS 4K/5K",
	"016": "ALFA M-5000",
	"017": "ALFA P-5000",
	"018": "Axpert Plus Duo/Tri 5KVA",
	"019": "Axpert EPS 5KW",
	"020": "Axpert EPS M-5KW",
	"021": "Axpert EPS 33-5KW",
	"022": "Axpert MKS II 5KW",
	"023": "AXPERT KING 5KW",
	"024": "AXPERT KING 3KW",
	"025": "APT MKS II 5KW (Feed-in grid)",
	"026": "Axpert MLV 5KW-48V",
	"027": "AXPERT VMIII",
	"028": "APT VMIII 3.2KW (Feed-in grid)",
	"029": "AXPERT VMII",
	"030": "Fusion VMII (Feed-in grid)",
	"031": "Phocos MKS II 5KW",
	"032": "Axpert MKS Zero LV 0.7KW",
	"033": "Axpert MKS Zero LV 1.4KW",
	"034": "Axpert MKS Zero LV 2.6KW",
	"035": "AXPERT KING 5KW (Energy)",
	"036": "AXPERT KING 3KW (Energy)",
	"037": "AXPERT VMIII (Energy)",
	"038": "Phocos MKS II 5KW (Energy)",
	"039": "Phocos MKS II 5KW LV",
	"040": "Axpert SE 3.5K",
	"041": "Axpert SE 5.5K",
	"042": "AXPERT MKS III 5KW",
	"043": "MAX 3.6K",
	"044": "MAX 7.2K",
	"045": "MAX 5K LV",
}

// ModelName resolves a QGMN model code, falling back to the raw code for
// models newer than the reference table.
func ModelName(code string) string {
	if name, ok := modelNames[code]; ok {
		return name
	}
	return code
}
