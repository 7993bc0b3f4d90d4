package domain

import "fmt"

// ESAW classification tables referenced by injury reports. The tables are
// static regulatory lookup data seeded here; codes follow the European
// Statistics on Accidents at Work methodology.
const (
	ESAWWorkstation       = "workstation"
	ESAWWorkEnvironment   = "work_environment"
	ESAWWorkProcess       = "work_process"
	ESAWSpecificActivity  = "specific_activity"
	ESAWDeviation         = "deviation"
	ESAWContactMode       = "contact_mode"
	ESAWInjuryType        = "injury_type"
	ESAWBodyPart          = "body_part"
	ESAWMaterialDeviation = "material_agent_deviation"
	ESAWMaterialContact   = "material_agent_contact"
	ESAWMaterialActivity  = "material_agent_activity"
	ESAWSeverity          = "severity"
	ESAWEmploymentStatus  = "employment_status"
)

var esawTables = map[string]map[string]string{
	ESAWWorkstation: {
		"1": "Uobičajeno radno mesto",
		"2": "Povremeno ili mobilno radno mesto",
		"9": "Ostala radna mesta",
	},
	ESAWWorkEnvironment: {
		"011": "Proizvodni pogon, fabrika, radionica",
		"021": "Gradilište - objekat u izgradnji",
		"041": "Kancelarija, sala za sastanke, biblioteka",
		"051": "Zdravstvena ustanova",
		"061": "Otvoren prostor stalno izložen saobraćaju",
	},
	ESAWWorkProcess: {
		"11": "Proizvodnja, prerada, skladištenje",
		"21": "Iskopavanje, građevinski radovi",
		"41": "Usluge preduzećima ili licima",
		"51": "Pomoćni poslovi, održavanje, popravka",
	},
	ESAWSpecificActivity: {
		"11": "Rukovanje mašinom",
		"21": "Rad ručnim alatom",
		"31": "Upravljanje prevoznim sredstvom",
		"41": "Rukovanje predmetima",
		"61": "Kretanje",
	},
	ESAWDeviation: {
		"30": "Lom, pucanje, klizanje, pad nošenog predmeta",
		"42": "Gubitak kontrole nad ručnim alatom",
		"51": "Pad lica na nižu površinu",
		"52": "Pad lica na istom nivou",
		"71": "Fizičko opterećenje pri podizanju tereta",
	},
	ESAWContactMode: {
		"12": "Kontakt sa električnim naponom",
		"31": "Udar o nepokretni predmet pri padu",
		"42": "Udar padajućeg predmeta",
		"51": "Kontakt sa oštrim predmetom",
		"71": "Fizički napor mišićno-skeletnog sistema",
	},
	ESAWInjuryType: {
		"010": "Rane i površinske povrede",
		"020": "Prelomi kostiju",
		"030": "Iščašenja, uganuća, nategnuća",
		"060": "Opekotine, ošurenja, promrzline",
		"120": "Višestruke povrede",
	},
	ESAWBodyPart: {
		"11": "Glava - mozak, lobanja",
		"31": "Leđa, kičma",
		"52": "Šaka",
		"53": "Prst(i) šake",
		"62": "Noga, uključujući koleno",
	},
	ESAWMaterialDeviation: {
		"02.01": "Zgrade, površine na nivou tla",
		"06.02": "Ručni alat bez pogona",
		"09.02": "Mašine za obradu materijala",
		"11.06": "Tereti - ručno rukovanje",
	},
	ESAWMaterialContact: {
		"01.02": "Površine na visini",
		"06.03": "Ručni alat sa pogonom",
		"10.11": "Mašine za sečenje",
		"14.05": "Metalni delovi, opiljci",
	},
	ESAWMaterialActivity: {
		"02.02": "Zgrade, konstrukcije na visini",
		"07.01": "Mašine - prenosne ili pokretne",
		"11.01": "Transportna sredstva",
		"18.01": "Organizmi, ljudska bića",
	},
	ESAWSeverity: {
		"1": "Laka povreda",
		"2": "Teška povreda",
		"3": "Smrtna povreda",
		"4": "Kolektivna povreda",
	},
	ESAWEmploymentStatus: {
		"100": "Zaposleni na neodređeno vreme",
		"200": "Zaposleni na određeno vreme",
		"300": "Samozaposleni",
		"500": "Praktikant, pripravnik",
	},
}

// ValidateESAWCode checks one code against its seeded table.
func ValidateESAWCode(table, code string) error {
	codes, ok := esawTables[table]
	if !ok {
		return WrapError(ErrInvalidInput, "validate esaw code",
			fmt.Errorf("unknown classification table %q", table))
	}
	if _, ok := codes[code]; !ok {
		return WrapError(ErrInvalidInput, "validate esaw code",
			fmt.Errorf("code %q is not in table %q", code, table))
	}
	return nil
}

// ESAWLabel resolves the display label for a code; empty when unknown.
func ESAWLabel(table, code string) string {
	return esawTables[table][code]
}
