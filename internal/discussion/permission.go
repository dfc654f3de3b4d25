package discussion

import (
	"github.com/VitaminP8/discuss/internal/model"
)

// Target - пост или комментарий; для проверки прав нужен только автор
type Target interface {
	Author() string
}

// CreatePredicate решает, может ли аутентифицированный пользователь создавать контент
// (например, требовать запись на курс). По умолчанию разрешено всем.
type CreatePredicate func(actor model.Actor) bool

type Evaluator struct {
	canCreate CreatePredicate
}

func NewEvaluator(canCreate CreatePredicate) *Evaluator {
	return &Evaluator{canCreate: canCreate}
}

var defaultEvaluator = NewEvaluator(nil)

// Evaluate с предикатом создания по умолчанию
func Evaluate(actor model.Actor, role model.Role, action model.Action, target Target) bool {
	return defaultEvaluator.Evaluate(actor, role, action, target)
}

// Evaluate - чистая функция без ввода-вывода. При RoleUnknown всегда false:
// вызывающий код обязан отличать "ещё не известно" от отказа (см. Permissions.Known).
func (e *Evaluator) Evaluate(actor model.Actor, role model.Role, action model.Action, target Target) bool {
	if role == model.RoleUnknown {
		return false
	}

	switch action {
	case model.ActionCreate:
		if !actor.Authenticated {
			return false
		}
		return e.canCreate == nil || e.canCreate(actor)
	case model.ActionUpdate:
		return actor.Authenticated && isAuthor(actor, target)
	case model.ActionDelete:
		return isAuthor(actor, target) || role == model.RoleAdmin || role == model.RoleModerator
	case model.ActionModerate:
		return role == model.RoleAdmin
	}
	return false
}

func isAuthor(actor model.Actor, target Target) bool {
	if actor.ID == "" || target == nil {
		return false
	}
	return actor.ID == target.Author()
}

// Permissions - права на конкретный объект. Known == false пока роль не определена;
// в этом состоянии нельзя ни показывать, ни прятать элементы, зависящие от прав.
type Permissions struct {
	Known    bool `json:"known"`
	Update   bool `json:"update"`
	Delete   bool `json:"delete"`
	Moderate bool `json:"moderate"`
}

// ShowMenu - есть хотя бы одно действие для меню "..."
func (p Permissions) ShowMenu() bool {
	return p.Update || p.Delete
}

func (e *Evaluator) For(actor model.Actor, role model.Role, target Target) Permissions {
	if role == model.RoleUnknown {
		return Permissions{}
	}
	return Permissions{
		Known:    true,
		Update:   e.Evaluate(actor, role, model.ActionUpdate, target),
		Delete:   e.Evaluate(actor, role, model.ActionDelete, target),
		Moderate: e.Evaluate(actor, role, model.ActionModerate, target),
	}
}
