package ecs

import "errors"

var ErrEntityNotAlive = errors.New("ecs: entity not alive")
