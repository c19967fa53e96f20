package persona

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
)

// Source is a PersonaSource backed by an in-memory list that can be replaced
// at runtime. Every replacement is delivered to subscribers.
type Source struct {
	lock     *sync.RWMutex
	personas []domain.Persona
	feed     event.Feed
}

var _ ports.PersonaSource = (*Source)(nil)

func NewSource(personas []domain.Persona) (*Source, error) {
	s := &Source{lock: &sync.RWMutex{}}
	if err := s.set(personas); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSourceFromAddresses returns a Source with one persona per address,
// identified by the address itself.
func NewSourceFromAddresses(addresses []string) (*Source, error) {
	personas := make([]domain.Persona, 0, len(addresses))
	for _, a := range addresses {
		personas = append(personas, domain.Persona{Identifier: a, Address: a})
	}
	return NewSource(personas)
}

func (s *Source) GetPersonas(context.Context) ([]domain.Persona, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]domain.Persona(nil), s.personas...), nil
}

func (s *Source) SubscribePersonas(ch chan<- []domain.Persona) event.Subscription {
	return s.feed.Subscribe(ch)
}

// SetPersonas replaces the list and notifies the subscribers.
func (s *Source) SetPersonas(personas []domain.Persona) error {
	if err := s.set(personas); err != nil {
		return err
	}
	s.feed.Send(append([]domain.Persona(nil), personas...))
	return nil
}

func (s *Source) set(personas []domain.Persona) error {
	list := make([]domain.Persona, 0, len(personas))
	for _, p := range personas {
		address, err := domain.ChecksumAddress(p.Address)
		if err != nil {
			return err
		}
		list = append(list, domain.Persona{
			Identifier: p.Identifier,
			Address:    address,
		})
	}

	s.lock.Lock()
	s.personas = list
	s.lock.Unlock()
	return nil
}
