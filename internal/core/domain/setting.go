package domain

const SettingCompanyLogo = "company_logo"

type Setting struct {
	Key   string
	Value string
}
