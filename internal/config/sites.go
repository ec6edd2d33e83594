package config

const usaCountryFacet = "bc33aa3152ec42d4995f4791a106ed09"

type facets = map[string][]string

// defaultSites lists the Workday career sites scraped out of the box.
func defaultSites() []SiteConfig {
	return []SiteConfig{
		workdaySite("adobe", "https://adobe.wd5.myworkdayjobs.com", "adobe", "external_experienced", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("allstate", "https://allstate.wd5.myworkdayjobs.com", "allstate", "allstate_careers", nil),
		workdaySite("assurant", "https://assurant.wd1.myworkdayjobs.com", "assurant", "Assurant_Careers", nil),
		workdaySite("az", "https://astrazeneca.wd3.myworkdayjobs.com", "astrazeneca", "Careers", nil),
		workdaySite("bah", "https://bah.wd1.myworkdayjobs.com", "bah", "BAH_Jobs", nil),
		workdaySite("baptist", "https://bhs.wd1.myworkdayjobs.com", "bhs", "careers", nil),
		workdaySite("broadridge", "https://broadridge.wd5.myworkdayjobs.com", "broadridge", "Careers", facets{"Location_Country": {usaCountryFacet}}),
		workdaySite("cardinal", "https://cardinalhealth.wd1.myworkdayjobs.com", "cardinalhealth", "EXT", nil),
		workdaySite("clevelandclinic", "https://ccf.wd1.myworkdayjobs.com", "ccf", "ClevelandClinicCareers", nil),
		workdaySite("cox", "https://cox.wd1.myworkdayjobs.com", "cox", "Cox_External_Career_Site_1", nil),
		workdaySite("davita", "https://davita.wd1.myworkdayjobs.com", "davita", "DKC_External", nil),
		workdaySite("gartner", "https://gartner.wd5.myworkdayjobs.com", "gartner", "EXT", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("gm", "https://generalmotors.wd5.myworkdayjobs.com", "generalmotors", "Careers_GM", facets{"Location_Country": {usaCountryFacet}}),
		workdaySite("grubhub", "https://wd3.myworkdaysite.com", "takeaway", "grubhubcareers", nil),
		workdaySite("hartford", "https://thehartford.wd5.myworkdayjobs.com", "thehartford", "Careers_External", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("huntington", "https://huntington.wd12.myworkdayjobs.com", "huntington", "HNBcareers", facets{"timeType": {"935efb19629601430173e15b13307200"}}),
		workdaySite("iqvia", "https://iqvia.wd1.myworkdayjobs.com", "iqvia", "iqvia", facets{"Location_Country": {usaCountryFacet}}),
		workdaySite("kbr", "https://kbr.wd5.myworkdayjobs.com", "kbr", "KBR_Careers", facets{"locationHierarchy1": {"7d7dca02efe301804a21b8e9f401c00f"}}),
		workdaySite("marmon", "https://marmon.wd5.myworkdayjobs.com", "marmon", "Marmon_Careers", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("nvidia", "https://nvidia.wd5.myworkdayjobs.com", "nvidia", "NVIDIAExternalCareerSite", facets{"locationHierarchy1": {"2fcb99c455831013ea52fb338f2932d8"}}),
		workdaySite("ohiohealth", "https://ohiohealth.wd5.myworkdayjobs.com", "ohiohealth", "OhioHealthJobs", nil),
		workdaySite("oregon", "https://oregon.wd5.myworkdayjobs.com", "oregon", "SOR_External_Career_Site", nil),
		workdaySite("progleasing", "https://progleasing.wd5.myworkdayjobs.com", "progleasing", "ProgLeasingCareers", nil),
		workdaySite("prologis", "https://prologis.wd5.myworkdayjobs.com", "prologis", "Prologis_External_Careers", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("prysmian", "https://prysmiangroup.wd3.myworkdayjobs.com", "prysmiangroup", "Careers", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("radian", "https://compass.wd5.myworkdayjobs.com", "compass", "Radian_External_Career_Site", nil),
		workdaySite("reliaquest", "https://reliaquest.wd5.myworkdayjobs.com", "reliaquest", "Campus_Recruiting", nil),
		workdaySite("sanofi", "https://sanofi.wd3.myworkdayjobs.com", "sanofi", "SanofiCareers", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("sunlife", "https://sunlife.wd3.myworkdayjobs.com", "sunlife", "Experienced", facets{"Location_Country": {usaCountryFacet}}),
		workdaySite("target", "https://target.wd5.myworkdayjobs.com", "target", "targetcareers", facets{"Location_Country": {usaCountryFacet}}),
		workdaySite("ulse", "https://ulse.wd5.myworkdayjobs.com", "ulse", "ulricareers", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("unhcr", "https://unhcr.wd3.myworkdayjobs.com", "unhcr", "External", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("verily", "https://verily.wd1.myworkdayjobs.com", "verily", "Verily_Careers", nil),
		workdaySite("verizon", "https://verizon.wd12.myworkdayjobs.com", "verizon", "verizon-careers", nil),
		workdaySite("warnerbros", "https://warnerbros.wd5.myworkdayjobs.com", "warnerbros", "global", facets{"locationCountry": {usaCountryFacet}}),
		workdaySite("zoom", "https://zoom.wd5.myworkdayjobs.com", "zoom", "Zoom", facets{"locationCountry": {usaCountryFacet}}),
	}
}

func workdaySite(name, host, tenant, site string, applied facets) SiteConfig {
	return SiteConfig{
		Name:    name,
		Scanner: "workday",
		URL:     host,
		Options: map[string]string{"tenant": tenant, "site": site},
		Facets:  applied,
	}
}
