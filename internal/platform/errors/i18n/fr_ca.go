package i18n

var messagesFrCA = map[Code]string{
	CodeUnknown:                "Une erreur est survenue. Veuillez réessayer.",
	CodeAuthInvalidCredentials: "Identifiants invalides",
	CodeAuthNetworkFailure:     "Erreur réseau, vérifiez votre connexion",
	CodeAuthSessionExpired:     "Session expirée, veuillez vous reconnecter",
	CodeAuthRefreshFailed:      "Échec de l'authentification, veuillez réessayer",
	CodeAuthLogoutFailed:       "Échec de la déconnexion, votre session locale a été effacée",
	CodeAuthCSRFTokenMissing:   "Impossible de démarrer une connexion sécurisée, veuillez réessayer",
	CodeBackendBadResponse:     "Le serveur a renvoyé une réponse inattendue",
	CodePrefsInvalidLocale:     "Langue non prise en charge {{.locale}}",
	CodePrefsInvalidTheme:      "Thème non pris en charge {{.theme}}",
	CodePrefsUnknownKey:        "Préférence inconnue {{.key}}",
	CodeNotFound:               "Introuvable",
}
