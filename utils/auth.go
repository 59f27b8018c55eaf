package utils

import (
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"smpverify/model"
)

// CheckAuth 检查用户是否有权限: configured developer or configured admin role id.
func CheckAuth(userID string, roles []string, auth model.Auth) bool {
	// 检查是否为开发者
	if slices.Contains(auth.Developers, userID) {
		return true
	}

	// 检查是否拥有管理员角色
	for _, role := range roles {
		if slices.Contains(auth.AdminsRoles, role) {
			return true
		}
	}

	return false
}

// IsPrivileged decides whether member may run moderator commands. On top of
// CheckAuth it accepts the administrator permission, the guild owner and any
// role whose name is in auth.AdminRoleNames. guild may be nil when it is not
// cached; the owner and role-name checks are skipped then.
func IsPrivileged(member *discordgo.Member, guild *discordgo.Guild, auth model.Auth) bool {
	if member == nil || member.User == nil {
		return false
	}

	if CheckAuth(member.User.ID, member.Roles, auth) {
		return true
	}

	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if guild == nil {
		return false
	}
	if guild.OwnerID == member.User.ID {
		return true
	}

	// 按角色名检查
	for _, role := range guild.Roles {
		if !slices.Contains(member.Roles, role.ID) {
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
		if slices.ContainsFunc(auth.AdminRoleNames, func(name string) bool {
			return strings.EqualFold(name, role.Name)
		}) {
			return true
		}
	}

	return false
}

// TopRole returns the name of member's highest role, or "No Role".
func TopRole(member *discordgo.Member, guild *discordgo.Guild) string {
	if member == nil || guild == nil {
		return "No Role"
	}

	var top *discordgo.Role
	for _, role := range guild.Roles {
		if role.Name == "@everyone" || !slices.Contains(member.Roles, role.ID) {
			continue
		}
		if top == nil || role.Position > top.Position {
			top = role
		}
	}
	if top == nil {
		return "No Role"
	}
	return top.Name
}
