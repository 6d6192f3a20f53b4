package bot

import (
	"errors"
	"fmt"
	"strings"

	"parrainage-bot/internal/ledger"
	"parrainage-bot/internal/models"
)

const (
	msgWelcome         = "👋 Bienvenue, %s!"
	msgCredited        = "✅ Ton parrainage a été pris en compte."
	msgMalformed       = "⚠️ L'argument de démarrage n'est pas valide."
	msgNoPayload       = "Utilise ton lien de parrainage pour inviter des amis et gagner des points."
	msgJoinChannel     = "\n🔗 Rejoins le canal: %s"
	msgFailure         = "❌ Une erreur est survenue, réessaie plus tard."
	msgNoReferrals     = "Tu n'as pas encore de filleuls. Partage ton lien avec tes amis!"
	msgEmptyBoard      = "Pas encore de participants au classement."
	msgNoInvite        = "Aucun lien d'invitation n'est configuré."
	defaultDisplayName = "Utilisateur"
)

func rejectionText(err error) string {
	switch {
	case errors.Is(err, ledger.ErrSelfReferral):
		return "ℹ️ Tu ne peux pas te parrainer toi-même."
	case errors.Is(err, ledger.ErrAlreadyCredited):
		return "ℹ️ Parrainage déjà attribué auparavant."
	case errors.Is(err, ledger.ErrAlreadyRecorded):
		return "ℹ️ Parrainage déjà enregistré."
	default:
		return msgFailure
	}
}

// handle renders @username when known, else the display name.
func handle(username, displayName string) string {
	if username != "" {
		return "@" + username
	}
	if displayName != "" {
		return displayName
	}
	return defaultDisplayName
}

func referralLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", botUsername, userID)
}

func linkText(link string, count int64) string {
	return fmt.Sprintf("🔗 Ton lien de parrainage:\n%s\n\n"+
		"👥 Filleuls: %d\n"+
		"Partage ce lien pour que tes amis démarrent le bot via toi.", link, count)
}

func referralsText(referred []models.ReferredUser) string {
	if len(referred) == 0 {
		return msgNoReferrals
	}

	lines := []string{fmt.Sprintf("👥 Tu as %d filleul(s):", len(referred))}
	for _, r := range referred {
		lines = append(lines, fmt.Sprintf("• %s (ID: %d)", handle(r.Username, r.DisplayName), r.UserID))
	}
	return strings.Join(lines, "\n")
}

func leaderboardText(entries []models.LeaderboardEntry) string {
	if len(entries) == 0 {
		return msgEmptyBoard
	}

	lines := []string{"🏆 Top parrains:"}
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s — %d filleul(s)", i+1, handle(e.Username, e.DisplayName), e.Score))
	}
	return strings.Join(lines, "\n")
}

func invitationText(inviteLink string) string {
	if inviteLink == "" {
		return msgNoInvite
	}
	return fmt.Sprintf("🔗 Lien d'invitation du canal:\n%s", inviteLink)
}

// announcedName is how a freshly referred user is named in the channel.
func announcedName(username, firstName string) string {
	if username == "" {
		return firstName
	}
	return fmt.Sprintf("%s (@%s)", firstName, username)
}
