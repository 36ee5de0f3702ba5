package fastview

import (
	"context"
	"errors"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// ViewBuilderFunc builds a view from a done chan and its view-model chan.
type ViewBuilderFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// ViewBuilder builds one or more views fed by a common view-model.
type ViewBuilder[DataModel any, ViewModel any] struct {
	source      <-chan DataModel
	viewModelFn func(DataModel) ViewModel
	builderFns  []ViewBuilderFunc[ViewModel]
	done        <-chan struct{} // Okay if nil
}

func NewViewBuilder[DataModel any, ViewModel any]() *ViewBuilder[DataModel, ViewModel] {
	return &ViewBuilder[DataModel, ViewModel]{}
}

// WithModel sets the data source and the function converting it to the view-model.
func (vb *ViewBuilder[DataModel, ViewModel]) WithModel(
	input <-chan DataModel,
	convert func(DataModel) ViewModel,
) *ViewBuilder[DataModel, ViewModel] {
	vb.source = input
	vb.viewModelFn = convert
	return vb
}

// WithView adds a view. Build returns views in the order they were added.
func (vb *ViewBuilder[DataModel, ViewModel]) WithView(
	builderFn ViewBuilderFunc[ViewModel],
) *ViewBuilder[DataModel, ViewModel] {
	vb.builderFns = append(vb.builderFns, builderFn)
	return vb
}

// WithContext closes every downstream chan when ctx is done.
func (vb *ViewBuilder[DataModel, ViewModel]) WithContext(
	ctx context.Context,
) *ViewBuilder[DataModel, ViewModel] {
	vb.done = ctx.Done()
	return vb
}

var (
	ErrNoViews = errors.New("no views to build: WithView must be called")
	ErrNoModel = errors.New("no model specified: WithModel must be called")
)

// Build wires source -> view-model -> one broadcast chan per view and returns the views.
func (vb *ViewBuilder[DataModel, ViewModel]) Build() (views []ViewComponent, err error) {
	if len(vb.builderFns) == 0 {
		return nil, ErrNoViews
	}
	if vb.viewModelFn == nil || vb.source == nil {
		return nil, ErrNoModel
	}

	vmChan := channerics.Convert(vb.done, vb.source, vb.viewModelFn)
	vmChans := channerics.Broadcast(vb.done, vmChan, len(vb.builderFns))
	for i, build := range vb.builderFns {
		views = append(views, build(vb.done, vmChans[i]))
	}
	return
}

// FanIn merges the views' update chans into one, batched at rate.
func FanIn(
	done <-chan struct{},
	views []ViewComponent,
	rate time.Duration,
) <-chan []EleUpdate {
	inputs := make([]<-chan []EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), rate)
}

// batchify collects updates and flushes them once per rate tick. A later update for
// an ele-id overwrites the pending one's ops by key, so a batch carries only the
// latest value of each attribute. Pending updates are flushed when source closes.
func batchify(
	done <-chan struct{},
	source <-chan []EleUpdate,
	rate time.Duration,
) <-chan []EleUpdate {
	output := make(chan []EleUpdate)

	go func() {
		defer close(output)

		pending := newBatch()
		ticks := channerics.NewTicker(done, rate)
		flush := func() bool {
			if pending.empty() {
				return true
			}
			select {
			case output <- pending.updates():
				pending = newBatch()
				return true
			case <-done:
				return false
			}
		}

		for {
			select {
			case <-done:
				return
			case updates, ok := <-source:
				if !ok {
					flush()
					return
				}
				pending.add(updates)
			case <-ticks:
				if !flush() {
					return
				}
			}
		}
	}()

	return output
}

// batch keeps element and op order stable so clients apply updates deterministically.
type batch struct {
	ids []string
	ops map[string][]Op
}

func newBatch() *batch {
	return &batch{ops: map[string][]Op{}}
}

func (b *batch) empty() bool {
	return len(b.ids) == 0
}

func (b *batch) add(updates []EleUpdate) {
	for _, update := range updates {
		current, seen := b.ops[update.EleId]
		if !seen {
			b.ids = append(b.ids, update.EleId)
		}
		for _, op := range update.Ops {
			current = setOp(current, op)
		}
		b.ops[update.EleId] = current
	}
}

func setOp(ops []Op, op Op) []Op {
	for i := range ops {
		if ops[i].Key == op.Key {
			ops[i].Value = op.Value
			return ops
		}
	}
	return append(ops, op)
}

func (b *batch) updates() []EleUpdate {
	out := make([]EleUpdate, 0, len(b.ids))
	for _, id := range b.ids {
		out = append(out, EleUpdate{EleId: id, Ops: b.ops[id]})
	}
	return out
}
