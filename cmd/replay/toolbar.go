package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/usecase/command"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/util"
)

const origin = "toolbar"

// player is the part of the player the toolbar drives directly.
type player interface {
	Toggle(ctx context.Context) error
	SetSpeed(speed int) error
	SetTicker(ctx context.Context, ticker string) error
	SetInterval(ctx context.Context, name string) error
	SetAnchorDate(ctx context.Context, date time.Time) error
}

type publisher interface {
	Publish(ctx context.Context, cmd command.Command) int
}

// toolbar maps one line of input to a player action:
//
//	<empty>|p   play/pause
//	b / f       step back / forward
//	s <1..10>   speed
//	t <ticker>  instrument
//	i <name>    interval
//	d <date>    anchor date, YYYY-MM-DD
//	q           quit
type toolbar struct {
	player player
	bus    publisher
	logger logger.Interface
}

func newToolbar(p player, bus publisher, log logger.Interface) *toolbar {
	return &toolbar{player: p, bus: bus, logger: log}
}

// Handle runs line and reports whether the session should end.
func (t *toolbar) Handle(ctx context.Context, line string) bool {
	ctx = util.WithRequestID(ctx, "")
	fields := strings.Fields(line)
	key, arg := "p", ""
	if len(fields) > 0 {
		key = strings.ToLower(fields[0])
	}
	if len(fields) > 1 {
		arg = fields[1]
	}

	var err error
	switch key {
	case "p":
		err = t.player.Toggle(ctx)
	case "b":
		t.bus.Publish(ctx, command.Command{Topic: command.TopicBackBar, Origin: origin})
	case "f":
		t.bus.Publish(ctx, command.Command{Topic: command.TopicForwardBar, Origin: origin})
	case "s":
		var speed int
		speed, err = strconv.Atoi(arg)
		if err != nil {
			err = errors.NewErrorDetails("speed must be a number", string(errors.ReplayInvalidSpeed), "speed")
			break
		}
		err = t.player.SetSpeed(speed)
	case "t":
		err = t.player.SetTicker(ctx, arg)
	case "i":
		err = t.player.SetInterval(ctx, arg)
	case "d":
		var date time.Time
		date, err = time.Parse(time.DateOnly, arg)
		if err != nil {
			err = errors.NewErrorDetails("date must be YYYY-MM-DD", string(errors.GeneralBadRequestError), "date")
			break
		}
		err = t.player.SetAnchorDate(ctx, date)
	case "q":
		return true
	default:
		err = errors.NewErrorDetails("unknown key "+key, string(errors.GeneralBadRequestError), "key")
	}

	if err != nil {
		t.logger.WarnContext(ctx, err.Error(), logger.NewField("code", errors.CodeOf(err)))
	}
	return false
}
