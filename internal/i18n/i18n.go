// Package i18n holds the label catalog used on generated contract documents.
// French is the reference language; unknown languages fall back to it and
// unknown codes fall back to the code itself.
package i18n

import "strings"

// DefaultLang is used when no supported language is requested.
const DefaultLang = "fr"

var catalog = map[string]map[string]string{
	"fr": {
		"required":          "Requis",
		"invalid_format":    "Format invalide",
		"too_long":          "Trop long",
		"doc.title":         "CONTRAT D'ABONNEMENT",
		"doc.number":        "N°",
		"doc.date":          "Date",
		"section.client":    "INFORMATIONS CLIENT",
		"section.contact":   "COORDONNÉES",
		"section.offer":     "OFFRE SÉLECTIONNÉE",
		"section.terms":     "CONDITIONS GÉNÉRALES",
		"section.signature": "SIGNATURE DU CLIENT",
		"label.last_name":   "Nom",
		"label.first_name":  "Prénom",
		"label.last_ar":     "Nom (Arabe)",
		"label.first_ar":    "Prénom (Arabe)",
		"label.birth_date":  "Date de naissance",
		"label.birth_place": "Lieu de naissance",
		"label.place_ar":    "Lieu (Arabe)",
		"label.sex":         "Sexe",
		"label.blood_type":  "Groupe sanguin",
		"label.id_number":   "N° Carte d'identité",
		"label.nin":         "NIN",
		"label.daira":       "Daïra",
		"label.baladia":     "Baladia",
		"label.id_expiry":   "Date d'expiration CNI",
		"label.phone":       "Téléphone",
		"label.email":       "Email",
		"label.address":     "Adresse",
		"label.number":      "Numéro attribué",
		"label.data":        "Internet",
		"label.validity":    "Validité",
		"label.voice":       "Appels",
		"label.sms":         "SMS",
		"label.features":    "Avantages inclus :",
		"label.photo":       "Photo",
		"unit.month":        "mois",
		"unit.day":          "jour",
		"unit.days":         "jours",
		"unit.unlimited":    "Illimités",
		"unit.gb":           "Go",
		"unit.mb":           "Mo",
		"unit.min":          "min",
		"feature.calls":     "Appels illimités vers Djezzy",
		"feature.data":      "Internet 4G",
		"feature.sms":       "SMS illimités Djezzy",
		"client.default":    "Client",
		"signature.confirm": "Je confirme que c'est ma carte d'identité nationale",
		"terms.body": "En signant ce contrat, le client accepte les conditions générales d'utilisation " +
			"des services Djezzy. Le client certifie que les informations fournies sont " +
			"exactes et s'engage à respecter les termes du contrat. Djezzy se réserve le " +
			"droit de suspendre ou résilier le service en cas de non-respect des conditions. " +
			"Pour toute réclamation, veuillez contacter le service client au 777.",
	},
	"en": {
		"required":          "Required",
		"invalid_format":    "Invalid format",
		"too_long":          "Too long",
		"doc.title":         "SUBSCRIPTION CONTRACT",
		"doc.number":        "No.",
		"section.client":    "CUSTOMER INFORMATION",
		"section.contact":   "CONTACT DETAILS",
		"section.offer":     "SELECTED OFFER",
		"section.terms":     "TERMS AND CONDITIONS",
		"section.signature": "CUSTOMER SIGNATURE",
		"label.last_name":   "Last name",
		"label.first_name":  "First name",
		"label.last_ar":     "Last name (Arabic)",
		"label.first_ar":    "First name (Arabic)",
		"label.birth_date":  "Date of birth",
		"label.birth_place": "Place of birth",
		"label.place_ar":    "Place (Arabic)",
		"label.sex":         "Sex",
		"label.blood_type":  "Blood type",
		"label.id_number":   "ID card number",
		"label.id_expiry":   "ID card expiry",
		"label.phone":       "Phone",
		"label.address":     "Address",
		"label.number":      "Assigned number",
		"label.validity":    "Validity",
		"label.voice":       "Calls",
		"label.features":    "Included benefits:",
		"unit.month":        "month",
		"unit.day":          "day",
		"unit.days":         "days",
		"unit.unlimited":    "Unlimited",
		"unit.gb":           "GB",
		"unit.mb":           "MB",
		"client.default":    "Customer",
		"signature.confirm": "I confirm this is my national identity card",
	},
}

// DetectLanguage picks a supported language from an Accept-Language style
// value, defaulting to French.
func DetectLanguage(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if _, ok := catalog[base]; ok {
			return base
		}
	}
	return DefaultLang
}

// T translates code into lang, falling back to French, then to code.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Translator returns T bound to lang.
func Translator(lang string) func(code string) string {
	return func(code string) string { return T(lang, code) }
}
