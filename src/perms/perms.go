package perms

import (
	"fmt"

	"git.nextdev.network/nextdev/nextdev/src/models"
)

/*
This package decides whether one user may perform a privileged action on
another user or their content. Every decision is a pure function of the two
users involved; callers are responsible for having already resolved both (so
"target not found" is reported before anything in here runs).

The role hierarchy (user < moderator < admin) is deliberately NOT encoded as
a numeric comparison. Too many of the rules are exceptions to the ordering -
admins cannot touch other admins, moderators can ban fellow moderators but
cannot delete their content - so each action gets its own explicit decision
function instead of a generic role matrix.
*/

// The actor's role is insufficient for the action. Maps to 403.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// The action is valid for the actor but not applicable to the target's
// current state (unbanning someone who isn't banned, demoting someone who
// isn't a moderator). Maps to 400, not 403.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return e.Reason
}

func denied(format string, args ...interface{}) error {
	return &DeniedError{Reason: fmt.Sprintf(format, args...)}
}

func badState(format string, args ...interface{}) error {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

/*
Applies to both posts and comments. The author may always delete their own
content, no matter their role - this even lets an admin delete their own
things despite the admins-don't-touch-admins rule below. Beyond the author:

  - an admin may delete anyone's content except another admin's
  - a moderator may delete content only if its author is a plain user
  - everyone else is denied
*/
func CanDeleteContent(actor, author *models.User) error {
	if actor.ID == author.ID {
		return nil
	}

	switch actor.Role {
	case models.RoleAdmin:
		if author.Role == models.RoleAdmin {
			return denied("admins cannot delete content belonging to other admins")
		}
		return nil
	case models.RoleModerator:
		if author.Role != models.RoleUser {
			return denied("moderators can only delete content belonging to regular users")
		}
		return nil
	default:
		return denied("not authorized to delete this content")
	}
}

func CanBan(actor, target *models.User) error {
	if err := canChangeBan(actor, target, "ban"); err != nil {
		return err
	}
	if target.IsBanned {
		return badState("%s is already banned", target.Username)
	}
	return nil
}

func CanUnban(actor, target *models.User) error {
	if err := canChangeBan(actor, target, "unban"); err != nil {
		return err
	}
	if !target.IsBanned {
		return badState("%s is not banned", target.Username)
	}
	return nil
}

// Self-action is checked before the role floor so that even an admin poking
// at themselves gets the "yourself" message. Note the asymmetry with content
// deletion: a moderator CAN ban another moderator, but nobody bans an admin.
func canChangeBan(actor, target *models.User, verb string) error {
	if actor.ID == target.ID {
		return denied("you cannot %s yourself", verb)
	}
	if !actor.IsStaff() {
		return denied("only moderators and admins can %s users", verb)
	}
	if target.Role == models.RoleAdmin {
		return denied("admins cannot be %sned", verb)
	}
	return nil
}

func CanPromote(actor, target *models.User) error {
	if actor.Role != models.RoleAdmin {
		return denied("only admins can promote users")
	}
	if target.Role != models.RoleUser {
		return badState("%s is already a moderator or admin", target.Username)
	}
	return nil
}

func CanDemote(actor, target *models.User) error {
	if actor.Role != models.RoleAdmin {
		return denied("only admins can demote users")
	}
	if target.Role != models.RoleModerator {
		return badState("%s is not a moderator", target.Username)
	}
	return nil
}

// Users may always upload their own photo; staff may upload on behalf of
// others. Banned users lose their photo privileges entirely, which also
// blocks staff from uploading on their behalf.
func CanUploadPhoto(actor, target *models.User) error {
	if actor.ID != target.ID && !actor.IsStaff() {
		return denied("you cannot upload a photo for another user")
	}
	if target.IsBanned {
		return denied("banned users cannot have a profile photo")
	}
	return nil
}

// Photo removal is moderation-only. There is intentionally no owner bypass
// here; a user replaces their photo by uploading a new one.
func CanDeletePhoto(actor, target *models.User) error {
	if !actor.IsStaff() {
		return denied("only moderators and admins can delete profile photos")
	}
	return nil
}
